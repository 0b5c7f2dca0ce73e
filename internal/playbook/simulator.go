package playbook

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrIncidentActive is returned when an attack is simulated while one is
// already in progress.
var ErrIncidentActive = errors.New("an incident is already active")

// Picker returns an index in [0, n).
type Picker func(n int) int

// RemediationResult is what a card reports after its script ran. The script
// always succeeds locally; Resolved says whether it ended the incident.
type RemediationResult struct {
	PlaybookID int
	Script     string
	Resolved   bool
}

// Simulator holds one session's incident state over a fixed catalog.
type Simulator struct {
	mu      sync.Mutex
	catalog *Catalog
	state   State
	pick    Picker
}

// NewSimulator creates an idle simulator. A nil picker uses math/rand.
func NewSimulator(catalog *Catalog, pick Picker) *Simulator {
	if pick == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		var rngMu sync.Mutex
		pick = func(n int) int {
			rngMu.Lock()
			defer rngMu.Unlock()
			return rng.Intn(n)
		}
	}
	return &Simulator{catalog: catalog, pick: pick}
}

// Catalog returns the simulator's catalog.
func (s *Simulator) Catalog() *Catalog {
	return s.catalog
}

// State returns the current state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SimulateAttack picks a playbook uniformly at random and puts it under
// attack. It fails with ErrIncidentActive, leaving state unchanged, when an
// incident is already running.
func (s *Simulator) SimulateAttack() (Playbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsIdle() {
		return Playbook{}, ErrIncidentActive
	}

	target := s.catalog.At(s.pick(s.catalog.Len()))
	s.state = Apply(s.state, AttackEvent{PlaybookID: target.ID})
	return target, nil
}

// CompleteRemediation applies a finished remediation for playbookID.
func (s *Simulator) CompleteRemediation(playbookID int) RemediationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state
	s.state = Apply(s.state, RemediationEvent{PlaybookID: playbookID})

	result := RemediationResult{
		PlaybookID: playbookID,
		Resolved:   !before.IsIdle() && s.state.IsIdle(),
	}
	if p, ok := s.catalog.Get(playbookID); ok {
		result.Script = p.RemediationScript
	}
	return result
}
