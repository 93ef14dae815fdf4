package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/store"
	"github.com/ayusman/panmotion/internal/timeutil"
	"github.com/ayusman/panmotion/internal/viewer"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// detectors hands out a fresh MockDetector per factory call.
type detectors struct {
	mu      sync.Mutex
	created []*detector.MockDetector
	err     error
	gate    chan struct{}
	result  detector.Result
}

func (d *detectors) factory(ctx context.Context) (detector.Detector, error) {
	d.mu.Lock()
	gate, err := d.gate, d.err
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	m := detector.NewMockDetector()
	d.mu.Lock()
	m.SetResult(d.result)
	d.created = append(d.created, m)
	d.mu.Unlock()
	return m, nil
}

func (d *detectors) all() []*detector.MockDetector {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*detector.MockDetector(nil), d.created...)
}

func (d *detectors) last() *detector.MockDetector {
	all := d.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

type recordingSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *recordingSink) Publish(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := v.(Message); ok {
		s.msgs = append(s.msgs, m)
	}
}

func (s *recordingSink) kinds(kind string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, m := range s.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type testApp struct {
	*App
	camera *capture.MockCamera
	dets   *detectors
	clock  *timeutil.MockClock
	sink   *recordingSink
}

func newTestApp(t *testing.T, st *store.Store) *testApp {
	t.Helper()

	frames := capture.BlankFrames(1, 32, 24)
	t.Cleanup(func() { frames[0].Close() })

	ta := &testApp{
		camera: capture.NewMockCamera(frames, true),
		dets:   &detectors{},
		clock:  timeutil.NewMockClock(t0),
		sink:   &recordingSink{},
	}

	a, err := New(Config{
		Store:     st,
		Camera:    ta.camera,
		Detector:  ta.dets.factory,
		Clock:     ta.clock,
		Container: viewer.Size{Width: 800, Height: 600},
		Content:   viewer.Size{Width: 400, Height: 300},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	a.SetSink(ta.sink)
	ta.App = a
	return ta
}

func (ta *testApp) enableHands(t *testing.T) {
	t.Helper()
	ta.SetHandsEnabled(true)
	require.Eventually(t, func() bool { return ta.Features().HandsReady }, waitFor, tick)
}

func (ta *testApp) enableHead(t *testing.T) {
	t.Helper()
	ta.SetHeadEnabled(true)
	require.Eventually(t, func() bool { return ta.Features().HeadReady }, waitFor, tick)
}

// advance moves the clock and runs one frame.
func (ta *testApp) advance(d time.Duration) {
	ta.clock.Advance(d)
	ta.Tick(ta.clock.Now())
}

func TestApp_NewCentersContent(t *testing.T) {
	ta := newTestApp(t, nil)

	want := viewer.Transform{X: 200, Y: 150, Scale: 1}
	assert.Equal(t, want, ta.View().Home)
	assert.Equal(t, want, ta.View().Transform)
	assert.Equal(t, section.Defaults(), ta.Sections())
	assert.Equal(t, Features{}, ta.Features())
	assert.False(t, ta.camera.IsOpen(), "camera stays closed until a feature needs it")
}

func TestApp_EnableHands(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHands(t)

	assert.True(t, ta.camera.IsOpen())
	require.Len(t, ta.dets.all(), 1)
	assert.Equal(t, Features{Hands: true, HandsReady: true}, ta.Features())

	det := ta.dets.last()
	ta.advance(33 * time.Millisecond)
	assert.Equal(t, 1, det.Calls(), "a ready feature detects on every tick")
}

func TestApp_GraspPansMap(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHands(t)
	home := ta.View().Home

	// Moving the fist left in camera space moves the mirrored cursor right.
	for i := 0; i < 10; i++ {
		ta.clock.Advance(33 * time.Millisecond)
		ta.ProcessFrame(detector.Result{Hand: detector.FistLandmarks(0.5-0.01*float64(i), 0.5)}, ta.clock.Now())
	}

	got := ta.View().Transform
	assert.Greater(t, got.X, home.X)
	assert.InDelta(t, home.Y, got.Y, 1e-6)

	starts := 0
	for _, m := range ta.sink.kinds(KindGesture) {
		if m.Gesture.Type == gesture.EventDragStart {
			starts++
		}
	}
	assert.Equal(t, 1, starts)
	assert.NotEmpty(t, ta.sink.kinds(KindView))
}

func TestApp_DisableHandsTearsDown(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHands(t)
	det := ta.dets.last()

	ta.ProcessFrame(detector.Result{Hand: detector.FistLandmarks(0.5, 0.5)}, t0)
	require.True(t, ta.classifier.Overlay().GraspActive)

	ta.SetHandsEnabled(false)

	assert.True(t, det.Closed(), "last release closes the detector")
	assert.False(t, ta.camera.IsOpen())
	assert.False(t, ta.classifier.Overlay().GraspActive)
	assert.Equal(t, Features{}, ta.Features())

	msgs := ta.sink.kinds(KindGesture)
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, gesture.EventDragEnd, msgs[len(msgs)-2].Gesture.Type)
	assert.Equal(t, gesture.StateHidden, msgs[len(msgs)-1].Gesture.State)

	// Frames after teardown are ignored.
	before := ta.View().Transform
	ta.ProcessFrame(detector.Result{Hand: detector.FistLandmarks(0.1, 0.5)}, t0)
	assert.Equal(t, before, ta.View().Transform)

	// Re-enabling starts from a fresh detector.
	ta.enableHands(t)
	require.Len(t, ta.dets.all(), 2)
	assert.False(t, ta.dets.last().Closed())
}

func TestApp_FeaturesShareDetector(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHands(t)
	ta.enableHead(t)

	require.Len(t, ta.dets.all(), 1)
	det := ta.dets.last()

	ta.SetHandsEnabled(false)
	assert.False(t, det.Closed())
	assert.True(t, ta.camera.IsOpen())

	ta.SetHeadEnabled(false)
	assert.True(t, det.Closed())
	assert.False(t, ta.camera.IsOpen())
}

func TestApp_SetupFailureDisablesFeature(t *testing.T) {
	t.Run("detector", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.dets.err = errors.New("model missing")

		ta.SetHandsEnabled(true)
		require.Eventually(t, func() bool { return !ta.Features().Hands }, waitFor, tick)
		assert.Zero(t, ta.camera.Opens())
	})

	t.Run("camera", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.camera.SetOpenError(errors.New("device busy"))

		ta.SetHeadEnabled(true)
		require.Eventually(t, func() bool { return !ta.Features().Head }, waitFor, tick)
		require.Len(t, ta.dets.all(), 1)
		assert.True(t, ta.dets.last().Closed(), "detector is released when the camera fails")
	})
}

func TestApp_DisableDuringSetup(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.dets.gate = make(chan struct{})

	ta.SetHandsEnabled(true)
	assert.Equal(t, Features{Hands: true}, ta.Features())

	ta.SetHandsEnabled(false)
	close(ta.dets.gate)

	// The cancelled setup never completes and never opens the camera.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, Features{}, ta.Features())
	assert.Zero(t, ta.camera.Opens())
	assert.Zero(t, ta.provider.Refs())
}

func TestApp_HeadZoom(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHead(t)

	width := 0.2
	for i := 0; i < 60; i++ {
		ta.ProcessFrame(detector.Result{Face: detector.FaceMeshLandmarks(0.5, 0.5, width)}, t0)
		width *= 1.01
	}

	assert.Greater(t, ta.View().Transform.Scale, 1.0, "leaning in zooms in")
	assert.NotEmpty(t, ta.sink.kinds(KindHeadZoom))
}

func TestApp_SelectSection(t *testing.T) {
	ta := newTestApp(t, nil)
	sec := section.Defaults()[0]

	// Double tap over the section, as the classifier would report it.
	p := ta.View().Transform.ToScreen(sec.Rect.Center())
	ta.gestureHandlers().OnDoubleTap(p.X, p.Y)

	assert.Equal(t, flow.PhaseMainTransitionOut, ta.Flow().State().Phase)
	assert.True(t, ta.View().Animating)

	for i := 0; i < 20; i++ {
		ta.advance(33 * time.Millisecond)
	}

	assert.Equal(t, flow.State{Phase: flow.PhaseSectionEnter, SectionID: sec.ID}, ta.Flow().State())
	want := section.Frame(sec, viewer.Size{Width: 800, Height: 600}, DefaultFramePadding, ta.Engine().Config())
	assert.Equal(t, want, ta.View().Transform)

	t.Run("gestures leave the map alone", func(t *testing.T) {
		before := ta.View().Transform
		ta.gestureHandlers().OnDrag(50, 50)
		ta.gestureHandlers().OnZoom(2)
		assert.Equal(t, before, ta.View().Transform)
	})

	t.Run("reset returns to the map", func(t *testing.T) {
		require.NoError(t, ta.FlowAction("entered", 0))
		ta.ResetView()
		assert.Equal(t, flow.PhaseMainIdle, ta.Flow().State().Phase)
		assert.Equal(t, ta.View().Home, ta.View().Transform)
	})
}

func TestApp_ResetWhileEntering(t *testing.T) {
	ta := newTestApp(t, nil)
	require.NoError(t, ta.SelectSection("section-a"))
	for i := 0; i < 20; i++ {
		ta.advance(33 * time.Millisecond)
	}
	require.Equal(t, flow.PhaseSectionEnter, ta.Flow().State().Phase)

	ta.sink.mu.Lock()
	ta.sink.msgs = nil
	ta.sink.mu.Unlock()

	ta.ResetView()
	assert.Equal(t, flow.State{Phase: flow.PhaseMainIdle}, ta.Flow().State())
	assert.Equal(t, ta.View().Home, ta.View().Transform)

	var phases []flow.Phase
	for _, m := range ta.sink.kinds(KindPhase) {
		phases = append(phases, m.Phase.Phase)
	}
	assert.Equal(t, []flow.Phase{flow.PhaseSectionExit, flow.PhaseMainIdle}, phases)
}

func TestApp_ViewChangeAbandonsSelection(t *testing.T) {
	tests := []struct {
		name   string
		change func(a *App)
	}{
		{"pan", func(a *App) { a.Pan(5, 5) }},
		{"zoom", func(a *App) { a.Zoom(1.5, 400, 300) }},
		{"center content", func(a *App) {
			a.CenterContent(viewer.Size{Width: 1000, Height: 700}, viewer.Size{Width: 400, Height: 300})
		}},
		{"wheel", func(a *App) { a.Pointer().Wheel(-100, 400, 300) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, nil)
			require.NoError(t, ta.SelectSection("section-a"))
			ta.advance(100 * time.Millisecond)
			require.Equal(t, flow.PhaseMainTransitionOut, ta.Flow().State().Phase)

			tt.change(ta.App)
			after := ta.View().Transform
			for i := 0; i < 60; i++ {
				ta.advance(33 * time.Millisecond)
			}

			assert.Equal(t, flow.State{Phase: flow.PhaseMainIdle}, ta.Flow().State())
			assert.False(t, ta.View().Animating)
			assert.Equal(t, after, ta.View().Transform, "the framing animation must not resume")
		})
	}

	t.Run("map responds again", func(t *testing.T) {
		ta := newTestApp(t, nil)
		require.NoError(t, ta.SelectSection("section-a"))
		ta.Pan(5, 5)

		before := ta.View().Transform
		ta.gestureHandlers().OnDrag(10, 0)
		assert.Equal(t, before.X+10, ta.View().Transform.X)
	})
}

func TestApp_DoubleTapMissesSections(t *testing.T) {
	ta := newTestApp(t, nil)

	ta.gestureHandlers().OnDoubleTap(0, 0)
	assert.Equal(t, flow.PhaseMainIdle, ta.Flow().State().Phase)
	assert.False(t, ta.View().Animating)
}

func TestApp_ResetAbortsTransition(t *testing.T) {
	ta := newTestApp(t, nil)
	require.NoError(t, ta.SelectSection("section-a"))
	ta.advance(100 * time.Millisecond)

	ta.gestureHandlers().OnReset()
	for i := 0; i < 20; i++ {
		ta.advance(33 * time.Millisecond)
	}

	assert.Equal(t, flow.PhaseMainIdle, ta.Flow().State().Phase)
	assert.Equal(t, ta.View().Home, ta.View().Transform)
}

func TestApp_FlowAction(t *testing.T) {
	ta := newTestApp(t, nil)

	assert.ErrorIs(t, ta.FlowAction("dance", 0), ErrUnknownAction)
	assert.ErrorIs(t, ta.FlowAction("entered", 0), flow.ErrInvalidTransition)
	assert.ErrorIs(t, ta.SelectSection("nope"), ErrUnknownSection)

	require.NoError(t, ta.SelectSection("section-a"))
	for i := 0; i < 20; i++ {
		ta.advance(33 * time.Millisecond)
	}
	require.NoError(t, ta.FlowAction("entered", 0))
	require.NoError(t, ta.FlowAction("flip", 0.4))
	assert.Equal(t, 0.4, ta.Flow().State().Progress)
	require.NoError(t, ta.FlowAction("exit", 0))
	require.NoError(t, ta.FlowAction("exited", 0))

	for i := 0; i < 20; i++ {
		ta.advance(33 * time.Millisecond)
	}
	assert.Equal(t, ta.View().Home, ta.View().Transform, "leaving a section animates home")
	assert.NotEmpty(t, ta.sink.kinds(KindPhase))
}

func TestApp_Sections(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	ta := newTestApp(t, st)
	assert.Equal(t, section.Defaults(), ta.Sections(), "empty store is seeded")

	extra := section.Section{ID: "section-b", Rect: section.Rect{X: 0, Y: 0, Width: 50, Height: 50}}
	require.NoError(t, ta.AddSection(extra))
	assert.Error(t, ta.AddSection(extra), "duplicate id")
	assert.ErrorIs(t, ta.AddSection(section.Section{ID: "bad"}), section.ErrInvalid)

	stored, err := st.Sections().List()
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	got, ok := ta.SectionAt(225, 175) // content (25, 25)
	require.True(t, ok)
	assert.Equal(t, "section-b", got.ID)

	require.NoError(t, ta.RemoveSection("section-b"))
	assert.ErrorIs(t, ta.RemoveSection("section-b"), ErrUnknownSection)
	_, ok = ta.SectionAt(225, 175)
	assert.False(t, ok)
}

func TestApp_FeaturesPersist(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	ta := newTestApp(t, st)
	ta.enableHead(t)
	require.NoError(t, ta.Close())

	assert.True(t, st.Settings().GetBool(store.SettingHeadEnabled, false))
	_, err = st.Settings().Get(store.SettingHandsEnabled)
	assert.ErrorIs(t, err, store.ErrNotFound, "untouched toggles are not stored")

	restored := newTestApp(t, st)
	restored.RestoreFeatures()
	require.Eventually(t, func() bool { return restored.Features().HeadReady }, waitFor, tick)
	assert.False(t, restored.Features().Hands)
}

func TestApp_Run(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.enableHands(t)
	det := ta.dets.last()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- ta.Run(ctx) }()

	require.Eventually(t, func() bool {
		ta.clock.Advance(time.Second / 30)
		return det.Calls() > 0
	}, waitFor, tick)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not stop")
	}
}

func TestApp_DissolveMask(t *testing.T) {
	ta := newTestApp(t, nil)

	png, err := ta.DissolveMask(0.5)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestMultiSink(t *testing.T) {
	first, second := &recordingSink{}, &recordingSink{}
	sink := MultiSink(first, second)

	sink.Publish(Message{Kind: KindView})
	sink.Publish("not a message")

	assert.Len(t, first.kinds(KindView), 1)
	assert.Len(t, second.kinds(KindView), 1)
}
