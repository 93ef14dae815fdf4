// Package flow tracks which screen the viewer is on: the map, a transition
// into a section, or a section itself.
package flow

import (
	"errors"
	"fmt"
	"sync"
)

// Phase is the current screen of the application.
type Phase string

const (
	PhaseMainIdle          Phase = "MAIN_IDLE"
	PhaseMainTransitionOut Phase = "MAIN_TRANSITION_OUT"
	PhaseSectionEnter      Phase = "SECTION_ENTER"
	PhaseSectionIdle       Phase = "SECTION_IDLE"
	PhaseSectionFlipActive Phase = "SECTION_FLIP_ACTIVE"
	PhaseSectionExit       Phase = "SECTION_EXIT"
)

// ErrInvalidTransition is returned when an event does not apply to the
// current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// State is a snapshot of the machine.
type State struct {
	Phase Phase `json:"phase"`
	// SectionID is set from selection until the section is exited.
	SectionID string `json:"sectionId,omitempty"`
	// Progress is the flip progress in SECTION_FLIP_ACTIVE.
	Progress float64 `json:"progress,omitempty"`
}

// Machine is the application phase machine. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// New returns a machine in MAIN_IDLE.
func New() *Machine {
	return &Machine{state: State{Phase: PhaseMainIdle}}
}

// OnChange registers fn to be called after every transition.
func (m *Machine) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Select starts leaving the map towards a section.
func (m *Machine) Select(sectionID string) error {
	if sectionID == "" {
		return fmt.Errorf("select: empty section id: %w", ErrInvalidTransition)
	}
	return m.transition("select", func(s State) (State, bool) {
		if s.Phase != PhaseMainIdle {
			return s, false
		}
		return State{Phase: PhaseMainTransitionOut, SectionID: sectionID}, true
	})
}

// Enter moves into the selected section once the transition out is done.
func (m *Machine) Enter() error {
	return m.transition("enter", func(s State) (State, bool) {
		if s.Phase != PhaseMainTransitionOut {
			return s, false
		}
		return State{Phase: PhaseSectionEnter, SectionID: s.SectionID}, true
	})
}

// Entered marks the section entry animation as finished.
func (m *Machine) Entered() error {
	return m.transition("entered", func(s State) (State, bool) {
		if s.Phase != PhaseSectionEnter {
			return s, false
		}
		return State{Phase: PhaseSectionIdle, SectionID: s.SectionID}, true
	})
}

// SetFlipProgress updates the flip interaction. Progress is clamped to [0,1];
// progress 0 returns to SECTION_IDLE.
func (m *Machine) SetFlipProgress(progress float64) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return m.transition("flip", func(s State) (State, bool) {
		if s.Phase != PhaseSectionIdle && s.Phase != PhaseSectionFlipActive {
			return s, false
		}
		if progress == 0 {
			return State{Phase: PhaseSectionIdle, SectionID: s.SectionID}, true
		}
		return State{Phase: PhaseSectionFlipActive, SectionID: s.SectionID, Progress: progress}, true
	})
}

// Exit starts leaving the section.
func (m *Machine) Exit() error {
	return m.transition("exit", func(s State) (State, bool) {
		switch s.Phase {
		case PhaseSectionEnter, PhaseSectionIdle, PhaseSectionFlipActive:
			return State{Phase: PhaseSectionExit, SectionID: s.SectionID}, true
		}
		return s, false
	})
}

// Exited returns to the map.
func (m *Machine) Exited() error {
	return m.transition("exited", func(s State) (State, bool) {
		if s.Phase != PhaseSectionExit {
			return s, false
		}
		return State{Phase: PhaseMainIdle}, true
	})
}

// Abort returns to the map from a transition out that cannot complete.
func (m *Machine) Abort() error {
	return m.transition("abort", func(s State) (State, bool) {
		if s.Phase != PhaseMainTransitionOut {
			return s, false
		}
		return State{Phase: PhaseMainIdle}, true
	})
}

func (m *Machine) transition(event string, next func(State) (State, bool)) error {
	m.mu.Lock()
	s, ok := next(m.state)
	if !ok {
		phase := m.state.Phase
		m.mu.Unlock()
		return fmt.Errorf("%s from %s: %w", event, phase, ErrInvalidTransition)
	}
	m.state = s
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(s)
	}
	return nil
}
