package app

import (
	"context"
	"log"

	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/store"
)

// Features reports which tracking features are switched on. A feature is
// Ready once its detector and the camera are up.
type Features struct {
	Hands      bool `json:"hands"`
	Head       bool `json:"head"`
	HandsReady bool `json:"handsReady"`
	HeadReady  bool `json:"headReady"`
}

// feature is the lifecycle state of one tracking modality. gen changes on
// every enable and disable so a setup that finishes late can tell it is stale.
type feature struct {
	name   string
	wanted bool
	ready  bool
	det    detector.Detector
	gen    uint64
	cancel context.CancelFunc
}

// Features returns the current feature state.
func (a *App) Features() Features {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.featuresLocked()
}

func (a *App) featuresLocked() Features {
	return Features{
		Hands:      a.hands.wanted,
		Head:       a.face.wanted,
		HandsReady: a.hands.ready,
		HeadReady:  a.face.ready,
	}
}

// SetHandsEnabled switches hand tracking on or off. Switching on returns
// immediately; the detector and camera come up in the background and a
// failure only logs and switches the feature off again. Switching off is
// synchronous and resets all gesture state.
func (a *App) SetHandsEnabled(enabled bool) {
	a.setFeature(&a.hands, store.SettingHandsEnabled, enabled)
}

// SetHeadEnabled switches head-distance zoom on or off, like SetHandsEnabled.
func (a *App) SetHeadEnabled(enabled bool) {
	a.setFeature(&a.face, store.SettingHeadEnabled, enabled)
}

// RestoreFeatures enables the features that were on when the app last ran.
func (a *App) RestoreFeatures() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()
	if settings.GetBool(store.SettingHandsEnabled, false) {
		a.SetHandsEnabled(true)
	}
	if settings.GetBool(store.SettingHeadEnabled, false) {
		a.SetHeadEnabled(true)
	}
}

func (a *App) setFeature(f *feature, key string, enabled bool) {
	if enabled {
		a.enable(f)
	} else {
		a.disable(f)
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(key, enabled); err != nil {
			log.Printf("Failed to save %s setting: %v", f.name, err)
		}
	}
	a.publishFeatures()
}

func (a *App) enable(f *feature) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if f.wanted {
		return
	}
	f.wanted = true
	f.gen++
	ctx, cancel := context.WithCancel(a.ctx)
	f.cancel = cancel
	go a.setup(ctx, f, f.gen)
}

// setup acquires the shared detector and opens the camera for f. Anything
// acquired is released again when f was switched off in the meantime.
func (a *App) setup(ctx context.Context, f *feature, gen uint64) {
	det, err := a.provider.Acquire(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Warning: %s unavailable: %v", f.name, err)
		}
		a.setupFailed(f, gen)
		return
	}

	if err := a.openCamera(); err != nil {
		log.Printf("Warning: %s unavailable: %v", f.name, err)
		a.provider.Release()
		a.setupFailed(f, gen)
		return
	}

	a.mu.Lock()
	if f.gen != gen || ctx.Err() != nil {
		a.mu.Unlock()
		a.provider.Release()
		a.closeCameraIfUnused()
		return
	}
	f.det = det
	f.ready = true
	f.cancel = nil
	a.mu.Unlock()

	log.Printf("%s enabled", f.name)
	a.publishFeatures()
}

func (a *App) setupFailed(f *feature, gen uint64) {
	a.mu.Lock()
	if f.gen == gen {
		f.wanted = false
		if f.cancel != nil {
			f.cancel()
			f.cancel = nil
		}
	}
	a.mu.Unlock()

	a.closeCameraIfUnused()
	a.publishFeatures()
}

// disable tears f down synchronously: pending setup is cancelled, the
// detector reference released and the modality state reset.
func (a *App) disable(f *feature) {
	a.frameMu.Lock()

	a.mu.Lock()
	if !f.wanted {
		a.mu.Unlock()
		a.frameMu.Unlock()
		return
	}
	f.wanted = false
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	wasReady := f.ready
	f.ready = false
	f.det = nil
	a.mu.Unlock()

	if wasReady {
		a.provider.Release()
	}
	if f == &a.hands {
		a.classifier.Reset()
		a.publishGesture(gesture.Event{Type: gesture.EventCursorMove, State: gesture.StateHidden})
	} else {
		a.head.ResetBaseline()
	}
	a.frameMu.Unlock()

	a.closeCameraIfUnused()
	log.Printf("%s disabled", f.name)
}

func (a *App) openCamera() error {
	a.camMu.Lock()
	defer a.camMu.Unlock()
	if a.camera.IsOpen() {
		return nil
	}
	return a.camera.Open()
}

// closeCameraIfUnused closes the camera once no feature wants it.
func (a *App) closeCameraIfUnused() {
	a.camMu.Lock()
	defer a.camMu.Unlock()

	a.mu.Lock()
	unused := !a.hands.wanted && !a.face.wanted
	a.mu.Unlock()

	if unused && a.camera.IsOpen() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
}

func (a *App) publishFeatures() {
	f := a.Features()
	a.publish(Message{Kind: KindFeatures, Features: &f})
}
