package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/viewer"
)

// ErrUnknownAction is returned by FlowAction for unrecognized actions.
var ErrUnknownAction = errors.New("unknown flow action")

// ViewState is a snapshot of the engine.
type ViewState struct {
	Transform viewer.Transform `json:"transform"`
	Home      viewer.Transform `json:"home"`
	Container viewer.Size      `json:"container"`
	Animating bool             `json:"animating"`
}

// View returns the current engine state.
func (a *App) View() ViewState {
	return ViewState{
		Transform: a.engine.Transform(),
		Home:      a.engine.Home(),
		Container: a.engine.Container(),
		Animating: a.engine.Animating(),
	}
}

// Pan translates the view, cancelling any animation. Cancelling the framing
// animation of a selection returns the phase to MAIN_IDLE.
func (a *App) Pan(dx, dy float64) {
	a.engine.Cancel()
	a.engine.Pan(dx, dy)
}

// Zoom zooms about the container point (cx, cy), cancelling any animation.
func (a *App) Zoom(factor, cx, cy float64) {
	a.engine.Cancel()
	a.engine.Zoom(factor, cx, cy)
}

// AnimateTo eases the view to target. A zero duration uses the default.
func (a *App) AnimateTo(target viewer.Transform, d time.Duration) {
	a.engine.AnimateTo(target, d, nil)
}

// CenterContent re-centers the content for a new container or image size.
func (a *App) CenterContent(container, content viewer.Size) bool {
	a.engine.Cancel()
	return a.engine.CenterContent(container, content)
}

// ResetView returns to the map at the home transform. A section that is
// open or being opened is left, and the head-zoom baseline restarts so the
// current head distance becomes neutral.
func (a *App) ResetView() {
	var err error
	switch a.flow.State().Phase {
	case flow.PhaseMainTransitionOut:
		err = a.flow.Abort()
	case flow.PhaseSectionEnter, flow.PhaseSectionIdle, flow.PhaseSectionFlipActive:
		if err = a.flow.Exit(); err == nil {
			err = a.flow.Exited()
		}
	case flow.PhaseSectionExit:
		err = a.flow.Exited()
	}
	if err != nil {
		log.Printf("Failed to leave section: %v", err)
	}

	a.engine.Cancel()
	a.engine.Reset()
	a.head.ResetBaseline()
}

// FlowAction applies a phase transition reported by the presentation layer:
// "entered", "flip" (with progress), "exit", "exited" or "abort".
func (a *App) FlowAction(action string, progress float64) error {
	switch action {
	case "entered":
		return a.flow.Entered()
	case "flip":
		return a.flow.SetFlipProgress(progress)
	case "exit":
		return a.flow.Exit()
	case "exited":
		if err := a.flow.Exited(); err != nil {
			return err
		}
		a.engine.AnimateTo(a.engine.Home(), 0, nil)
		return nil
	case "abort":
		if err := a.flow.Abort(); err != nil {
			return err
		}
		a.engine.Cancel()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
