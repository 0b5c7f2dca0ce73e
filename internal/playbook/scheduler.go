package playbook

import (
	"context"
	"sync"
	"time"
)

// DefaultRemediationDelay is how long a simulated remediation script runs.
const DefaultRemediationDelay = 2 * time.Second

// Tick is delivered when a scheduled remediation's delay elapses.
type Tick struct {
	PlaybookID int
	At         time.Time
}

type task struct {
	cancel context.CancelFunc
	ch     chan Tick
}

// Scheduler runs delayed remediation completions keyed by playbook id.
// Each card has at most one pending task. Cancelled tasks close their
// channel without delivering a Tick.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[int]*task
	closed  bool
}

// NewScheduler creates a scheduler with the given delay.
func NewScheduler(delay time.Duration) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	return &Scheduler{
		delay:   delay,
		pending: make(map[int]*task),
	}
}

// Delay returns the configured delay.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Schedule starts the delay for playbookID. It returns false when a task for
// that id is already pending or the scheduler is closed.
func (s *Scheduler) Schedule(playbookID int) (<-chan Tick, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}
	if _, busy := s.pending[playbookID]; busy {
		return nil, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, ch: make(chan Tick, 1)}
	s.pending[playbookID] = t

	go s.run(ctx, playbookID, t)
	return t.ch, true
}

func (s *Scheduler) run(ctx context.Context, playbookID int, t *task) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case at := <-timer.C:
		s.mu.Lock()
		if s.pending[playbookID] == t {
			delete(s.pending, playbookID)
			t.ch <- Tick{PlaybookID: playbookID, At: at}
		}
		s.mu.Unlock()
	case <-ctx.Done():
	}
	close(t.ch)
}

// Pending reports whether a task for playbookID is waiting.
func (s *Scheduler) Pending(playbookID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[playbookID]
	return ok
}

// Cancel drops the pending task for playbookID, if any.
func (s *Scheduler) Cancel(playbookID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[playbookID]; ok {
		t.cancel()
		delete(s.pending, playbookID)
	}
}

// Close cancels every pending task and refuses new ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.pending {
		t.cancel()
		delete(s.pending, id)
	}
	s.closed = true
}
