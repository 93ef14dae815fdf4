// Package tray provides a system tray menu for panmotion.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onHands    func(enabled bool)
	onHead     func(enabled bool)
	onReset    func()
	onSettings func()
	onQuit     func()
	hands      bool
	head       bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuHands   *systray.MenuItem
	menuHead    *systray.MenuItem
	menuGesture *systray.MenuItem
}

// New creates a new Tray showing the given feature states.
func New(hands, head bool) *Tray {
	return &Tray{
		hands: hands,
		head:  head,
	}
}

// OnHandsToggle sets the callback called when hand tracking is toggled.
func (t *Tray) OnHandsToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onHands = fn
}

// OnHeadToggle sets the callback called when head zoom is toggled.
func (t *Tray) OnHeadToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onHead = fn
}

// OnReset sets the callback called when the reset view item is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Panmotion")
	systray.SetTooltip("Panmotion hands-free map viewer")

	t.mu.Lock()
	t.menuHands = systray.AddMenuItem(toggleTitle("Hands", t.hands), "Toggle hand tracking")
	t.menuHead = systray.AddMenuItem(toggleTitle("Head zoom", t.head), "Toggle head zoom")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuGesture.Disable()
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset view", "Return to the home view")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Panmotion")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuHands.ClickedCh:
				t.handleHands()
			case <-t.menuHead.ClickedCh:
				t.handleHead()
			case <-menuReset.ClickedCh:
				t.call(t.onResetFn())
			case <-menuSettings.ClickedCh:
				t.call(t.onSettingsFn())
			case <-menuQuit.ClickedCh:
				t.call(t.onQuitFn())
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(name string, enabled bool) string {
	if enabled {
		return "● " + name
	}
	return "○ " + name
}

// handleHands flips hand tracking and notifies the callback.
func (t *Tray) handleHands() {
	t.mu.Lock()
	t.hands = !t.hands
	enabled := t.hands
	t.menuHands.SetTitle(toggleTitle("Hands", enabled))
	callback := t.onHands
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleHead flips head zoom and notifies the callback.
func (t *Tray) handleHead() {
	t.mu.Lock()
	t.head = !t.head
	enabled := t.head
	t.menuHead.SetTitle(toggleTitle("Head zoom", enabled))
	callback := t.onHead
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) onResetFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onReset
}

func (t *Tray) onSettingsFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onSettings
}

func (t *Tray) onQuitFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onQuit
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetFeatures updates the toggles after a change made elsewhere, such as
// the HTTP API.
func (t *Tray) SetFeatures(hands, head bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hands, t.head = hands, head
	if t.menuHands != nil {
		t.menuHands.SetTitle(toggleTitle("Hands", hands))
		t.menuHead.SetTitle(toggleTitle("Head zoom", head))
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuGesture != nil {
		if name == "" {
			t.menuGesture.SetTitle("Last: none")
		} else {
			t.menuGesture.SetTitle("Last: " + name)
		}
	}
}

// Features returns the toggle states shown in the menu.
func (t *Tray) Features() (hands, head bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hands, t.head
}
