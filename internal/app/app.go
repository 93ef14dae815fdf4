// Package app wires the camera, the landmark detector, the gesture classifier
// and the head-zoom estimator to the view engine.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/config"
	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/dissolve"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/headzoom"
	"github.com/ayusman/panmotion/internal/preview"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/store"
	"github.com/ayusman/panmotion/internal/timeutil"
	"github.com/ayusman/panmotion/internal/viewer"
)

// Defaults for Config fields left zero.
const (
	DefaultFramePadding = 40
	DefaultWidth        = 1280
	DefaultHeight       = 800
)

// ErrUnknownSection is returned for section ids that do not exist.
var ErrUnknownSection = errors.New("unknown section")

// Config holds configuration options for the application.
type Config struct {
	// Store persists sections and feature toggles. Optional; without it the
	// built-in sections are used and toggles are not remembered.
	Store *store.Store
	// Camera defaults to the first webcam.
	Camera capture.Camera
	// Detector builds the shared landmark detector. Defaults to MediaPipe.
	Detector detector.Factory
	// Clock defaults to the real clock.
	Clock timeutil.Clock
	// Tuning overrides classifier, estimator and engine constants. Optional.
	Tuning *config.TuningConfig
	// Container is the viewport size in pixels.
	Container viewer.Size
	// Content is the natural size of the map image. When set, the content
	// is centered and that becomes the home transform.
	Content viewer.Size
	// FramePadding is the margin kept around a section framed on selection.
	FramePadding float64
	// FPS is the frame loop rate.
	FPS int
	// Preview receives annotated camera frames when set.
	Preview *preview.Buffer
}

// App is the main application. It owns the camera and runs one frame loop
// in which detection and animation steps happen serially.
type App struct {
	config     Config
	clock      timeutil.Clock
	camera     capture.Camera
	provider   *detector.Provider
	scheduler  *viewer.FrameScheduler
	engine     *viewer.Engine
	pointer    *viewer.Pointer
	classifier *gesture.Classifier
	head       *headzoom.Estimator
	flow       *flow.Machine

	// ctx parents every feature setup and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	// frameMu serializes frames with feature teardown, so no frame is
	// processed for a feature after it was switched off.
	frameMu sync.Mutex
	// camMu serializes camera open and close decisions.
	camMu sync.Mutex

	mu       sync.Mutex
	hands    feature
	face     feature
	sections []section.Section
	sink     EventSink

	dissolveOnce sync.Once
	dissolveMap  *dissolve.Map
}

// New creates a new App instance with the given configuration.
func New(cfg Config) (*App, error) {
	if cfg.Camera == nil {
		cfg.Camera = capture.NewCamera(capture.DefaultConfig())
	}
	if cfg.Detector == nil {
		cfg.Detector = detector.OpenMediaPipe(detector.DefaultConfig())
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Tuning == nil {
		cfg.Tuning = config.EmptyTuningConfig()
	}
	if cfg.Container.Width <= 0 || cfg.Container.Height <= 0 {
		cfg.Container = viewer.Size{Width: DefaultWidth, Height: DefaultHeight}
	}
	if cfg.FramePadding <= 0 {
		cfg.FramePadding = DefaultFramePadding
	}
	if cfg.FPS <= 0 {
		cfg.FPS = capture.DefaultFPS
	}

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := viewer.NewFrameScheduler()
	engine := viewer.NewEngine(cfg.Tuning.ViewerConfig(), scheduler, cfg.Clock)

	a := &App{
		config:    cfg,
		clock:     cfg.Clock,
		camera:    cfg.Camera,
		provider:  detector.NewProvider(cfg.Detector),
		scheduler: scheduler,
		engine:    engine,
		pointer:   viewer.NewPointer(engine),
		head:      headzoom.New(cfg.Tuning.HeadZoomConfig()),
		flow:      flow.New(),
		ctx:       ctx,
		cancel:    cancel,
		hands:     feature{name: "hand tracking"},
		face:      feature{name: "head zoom"},
	}
	a.classifier = gesture.NewClassifier(cfg.Tuning.GestureConfig(), a.gestureHandlers())

	if err := a.loadSections(); err != nil {
		cancel()
		return nil, err
	}

	engine.SetContainer(cfg.Container)
	if cfg.Content.Width > 0 && cfg.Content.Height > 0 {
		engine.CenterContent(cfg.Container, cfg.Content)
	}

	// Interrupting the framing animation drops the callback that would
	// enter the section, so the selection is abandoned instead.
	engine.OnCancel(func() {
		if a.flow.State().Phase != flow.PhaseMainTransitionOut {
			return
		}
		if err := a.flow.Abort(); err != nil {
			log.Printf("Failed to abandon section selection: %v", err)
		}
	})
	engine.OnChange(func(t viewer.Transform) {
		a.publish(Message{Kind: KindView, View: &t})
	})
	a.flow.OnChange(func(s flow.State) {
		a.publish(Message{Kind: KindPhase, Phase: &s})
	})

	return a, nil
}

// Run drives the frame loop until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ticker := a.clock.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	log.Println("Frame loop started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Frame loop stopped")
			return nil
		case now := <-ticker.C():
			a.Tick(now)
		}
	}
}

// Close switches every feature off, which releases the detector and closes
// the camera.
func (a *App) Close() error {
	a.cancel()
	a.disable(&a.hands)
	a.disable(&a.face)

	a.camMu.Lock()
	defer a.camMu.Unlock()
	if a.camera.IsOpen() {
		return a.camera.Close()
	}
	return nil
}

// SetSink sets where events are published. Pass nil to stop publishing.
func (a *App) SetSink(s EventSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = s
}

// Engine returns the view engine.
func (a *App) Engine() *viewer.Engine {
	return a.engine
}

// Pointer returns the mouse and touch adapter for the engine.
func (a *App) Pointer() *viewer.Pointer {
	return a.pointer
}

// Flow returns the phase machine.
func (a *App) Flow() *flow.Machine {
	return a.flow
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Gesture returns the classifier output of the most recent frame.
func (a *App) Gesture() gesture.Output {
	return a.classifier.Last()
}

// DissolveMask renders the section transition mask at progress as PNG.
func (a *App) DissolveMask(progress float64) ([]byte, error) {
	a.dissolveOnce.Do(func() {
		a.dissolveMap = dissolve.GenerateMap()
	})
	return dissolve.EncodePNG(dissolve.RenderMask(a.dissolveMap, progress))
}
