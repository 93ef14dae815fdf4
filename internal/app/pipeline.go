package app

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/preview"
)

// Tick runs one frame: when a feature is ready it reads a camera frame,
// detects landmarks and steps the classifier and estimator, then it runs
// the scheduled animation steps.
func (a *App) Tick(now time.Time) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	handsOn, headOn, det := a.readyLocked()
	if handsOn || headOn {
		a.detectFrame(det, handsOn, headOn, now)
	}
	a.scheduler.RunFrame(now)
}

// ProcessFrame feeds one detection result to the ready features. Tick does
// this for camera frames; it is exported for callers with their own source
// of landmarks.
func (a *App) ProcessFrame(res detector.Result, now time.Time) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	handsOn, headOn, _ := a.readyLocked()
	a.process(res, handsOn, headOn, now)
}

func (a *App) readyLocked() (handsOn, headOn bool, det detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	det = a.hands.det
	if det == nil {
		det = a.face.det
	}
	return a.hands.ready, a.face.ready, det
}

func (a *App) detectFrame(det detector.Detector, handsOn, headOn bool, now time.Time) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrCameraNotOpen) {
			log.Printf("Error reading frame: %v", err)
		}
		return
	}
	defer frame.Close()

	res, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting landmarks: %v", err)
		return
	}

	a.process(res, handsOn, headOn, now)

	if a.config.Preview != nil {
		a.publishPreview(frame, res, handsOn, headOn)
	}
}

func (a *App) process(res detector.Result, handsOn, headOn bool, now time.Time) {
	if handsOn {
		a.classifier.Process(res.Hand, a.viewport(), now)
	}
	if headOn {
		if factor, ok := a.head.Process(res.Face); ok {
			a.publish(Message{Kind: KindHeadZoom, Factor: factor})
			if a.mapActive() {
				a.engine.ZoomCenter(factor)
			}
		}
	}
}

func (a *App) publishPreview(frame *gocv.Mat, res detector.Result, handsOn, headOn bool) {
	opts := preview.DefaultOptions()
	opts.Hand = handsOn
	opts.Face = headOn
	preview.Annotate(frame, res, a.classifier.Overlay(), opts)

	jpeg, err := preview.EncodeJPEG(*frame)
	if err != nil {
		log.Printf("Error encoding preview: %v", err)
		return
	}
	a.config.Preview.Publish(jpeg)
}

func (a *App) viewport() gesture.Viewport {
	c := a.engine.Container()
	return gesture.Viewport{Width: c.Width, Height: c.Height}
}

// mapActive reports whether gestures should move the map. Inside a section
// and during the transition into one the map stays put.
func (a *App) mapActive() bool {
	return a.flow.State().Phase == flow.PhaseMainIdle
}

// gestureHandlers applies classifier events to the engine and publishes them.
func (a *App) gestureHandlers() *gesture.Handlers {
	return &gesture.Handlers{
		OnDragStart: func(x, y float64) {
			if a.mapActive() {
				a.engine.Cancel()
			}
			a.publishGesture(gesture.Event{Type: gesture.EventDragStart, X: x, Y: y})
		},
		OnDrag: func(dx, dy float64) {
			if a.mapActive() {
				a.engine.Pan(dx, dy)
			}
			a.publishGesture(gesture.Event{Type: gesture.EventDrag, X: dx, Y: dy})
		},
		OnDragEnd: func() {
			a.publishGesture(gesture.Event{Type: gesture.EventDragEnd})
		},
		OnDoubleTap: func(x, y float64) {
			a.publishGesture(gesture.Event{Type: gesture.EventDoubleTap, X: x, Y: y})
			a.selectAt(x, y)
		},
		OnReset: func() {
			a.publishGesture(gesture.Event{Type: gesture.EventReset})
			a.ResetView()
		},
		OnCursorMove: func(x, y float64, state gesture.CursorState) {
			a.publishGesture(gesture.Event{Type: gesture.EventCursorMove, X: x, Y: y, State: state})
		},
		OnZoom: func(factor float64) {
			if a.mapActive() {
				a.engine.ZoomCenter(factor)
			}
			a.publishGesture(gesture.Event{Type: gesture.EventZoom, Factor: factor})
		},
	}
}

// selectAt selects the section under the container point (x, y), if any.
func (a *App) selectAt(x, y float64) {
	if !a.mapActive() {
		return
	}
	sec, ok := a.SectionAt(x, y)
	if !ok {
		return
	}
	if err := a.SelectSection(sec.ID); err != nil {
		log.Printf("Failed to select section %s: %v", sec.ID, err)
	}
}
