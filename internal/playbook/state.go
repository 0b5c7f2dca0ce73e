package playbook

// State is the session's incident state. Zero means no incident is active.
type State struct {
	ActivePlaybookID int
}

// Idle returns the state with no incident.
func Idle() State {
	return State{}
}

// UnderAttack returns the active playbook id, if any.
func (s State) UnderAttack() (int, bool) {
	return s.ActivePlaybookID, s.ActivePlaybookID != 0
}

// IsIdle reports whether no incident is active.
func (s State) IsIdle() bool {
	return s.ActivePlaybookID == 0
}

// Event is an input to Apply.
type Event interface {
	apply(State) State
}

// AttackEvent starts an incident for a playbook.
type AttackEvent struct {
	PlaybookID int
}

// RemediationEvent reports that a playbook's remediation script finished.
type RemediationEvent struct {
	PlaybookID int
}

// An attack only lands on an idle state; a second attack is ignored.
func (e AttackEvent) apply(s State) State {
	if !s.IsIdle() || e.PlaybookID <= 0 {
		return s
	}
	return State{ActivePlaybookID: e.PlaybookID}
}

// Remediation clears the incident only when it targets the active playbook.
func (e RemediationEvent) apply(s State) State {
	if active, ok := s.UnderAttack(); ok && active == e.PlaybookID {
		return Idle()
	}
	return s
}

// Apply returns the state after e. It never mutates s.
func Apply(s State, e Event) State {
	if e == nil {
		return s
	}
	return e.apply(s)
}
