// Package config loads optional tuning overrides for the gesture classifier,
// the head-zoom estimator and the view engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/headzoom"
	"github.com/ayusman/panmotion/internal/viewer"
)

// TuningConfig holds tuning overrides. Every field is optional; a nil field
// keeps the package default, so partial files are safe.
type TuningConfig struct {
	// Gesture classifier
	GraspAlpha           *float64 `json:"grasp_alpha,omitempty"`
	CursorAlpha          *float64 `json:"cursor_alpha,omitempty"`
	PinchAlpha           *float64 `json:"pinch_alpha,omitempty"`
	SpreadAlpha          *float64 `json:"spread_alpha,omitempty"`
	GraspActivate        *float64 `json:"grasp_activate,omitempty"`
	GraspDeactivate      *float64 `json:"grasp_deactivate,omitempty"`
	DragDeadband         *float64 `json:"drag_deadband,omitempty"`
	SpreadAllMinDist     *float64 `json:"spread_all_min_dist,omitempty"`
	ShakeBufferSize      *int     `json:"shake_buffer_size,omitempty"`
	ShakeRange           *float64 `json:"shake_range,omitempty"`
	PinchDown            *float64 `json:"pinch_down,omitempty"`
	PinchUp              *float64 `json:"pinch_up,omitempty"`
	DoublePinchMinSpread *float64 `json:"double_pinch_min_spread,omitempty"`
	DoublePinchWindow    *string  `json:"double_pinch_window,omitempty"` // duration string like "500ms"
	CursorSpeed          *float64 `json:"cursor_speed,omitempty"`
	HideWhileLost        *bool    `json:"hide_while_lost,omitempty"`
	ClampCursor          *bool    `json:"clamp_cursor,omitempty"`

	// Head zoom
	HeadAlpha        *float64 `json:"head_alpha,omitempty"`
	HeadDeadzone     *float64 `json:"head_deadzone,omitempty"`
	HeadSensitivity  *float64 `json:"head_sensitivity,omitempty"`
	HeadWarmupFrames *int     `json:"head_warmup_frames,omitempty"`

	// View engine
	MinScale          *float64 `json:"min_scale,omitempty"`
	MaxScale          *float64 `json:"max_scale,omitempty"`
	WheelFactor       *float64 `json:"wheel_factor,omitempty"`
	AnimationDuration *string  `json:"animation_duration,omitempty"` // duration string like "400ms"
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	alphas := map[string]*float64{
		"grasp_alpha":  c.GraspAlpha,
		"cursor_alpha": c.CursorAlpha,
		"pinch_alpha":  c.PinchAlpha,
		"spread_alpha": c.SpreadAlpha,
		"head_alpha":   c.HeadAlpha,
	}
	for name, v := range alphas {
		if v != nil && (*v <= 0 || *v > 1) {
			return fmt.Errorf("%s must be in (0, 1], got %f", name, *v)
		}
	}

	g := c.GestureConfig()
	if g.GraspActivate >= g.GraspDeactivate {
		return fmt.Errorf("grasp_activate (%f) must be below grasp_deactivate (%f)", g.GraspActivate, g.GraspDeactivate)
	}
	if g.PinchDown >= g.PinchUp {
		return fmt.Errorf("pinch_down (%f) must be below pinch_up (%f)", g.PinchDown, g.PinchUp)
	}
	if g.ShakeBufferSize < 2 {
		return fmt.Errorf("shake_buffer_size must be at least 2, got %d", g.ShakeBufferSize)
	}

	if c.HeadWarmupFrames != nil && *c.HeadWarmupFrames < 0 {
		return fmt.Errorf("head_warmup_frames must be non-negative, got %d", *c.HeadWarmupFrames)
	}

	v := c.ViewerConfig()
	if v.MinScale <= 0 || v.MinScale > v.MaxScale {
		return fmt.Errorf("scale bounds must satisfy 0 < min_scale <= max_scale, got %f and %f", v.MinScale, v.MaxScale)
	}

	for name, s := range map[string]*string{
		"double_pinch_window": c.DoublePinchWindow,
		"animation_duration":  c.AnimationDuration,
	} {
		if s != nil && *s != "" {
			if _, err := time.ParseDuration(*s); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *s, err)
			}
		}
	}

	return nil
}

// GestureConfig returns gesture.DefaultConfig with the overrides applied.
func (c *TuningConfig) GestureConfig() gesture.Config {
	g := gesture.DefaultConfig()
	setFloat(&g.GraspAlpha, c.GraspAlpha)
	setFloat(&g.CursorAlpha, c.CursorAlpha)
	setFloat(&g.PinchAlpha, c.PinchAlpha)
	setFloat(&g.SpreadAlpha, c.SpreadAlpha)
	setFloat(&g.GraspActivate, c.GraspActivate)
	setFloat(&g.GraspDeactivate, c.GraspDeactivate)
	setFloat(&g.DragDeadband, c.DragDeadband)
	setFloat(&g.SpreadAllMinDist, c.SpreadAllMinDist)
	setInt(&g.ShakeBufferSize, c.ShakeBufferSize)
	setFloat(&g.ShakeRange, c.ShakeRange)
	setFloat(&g.PinchDown, c.PinchDown)
	setFloat(&g.PinchUp, c.PinchUp)
	setFloat(&g.DoublePinchMinSpread, c.DoublePinchMinSpread)
	setDuration(&g.DoublePinchWindow, c.DoublePinchWindow)
	setFloat(&g.Speed, c.CursorSpeed)
	setBool(&g.HideWhileLost, c.HideWhileLost)
	setBool(&g.ClampCursor, c.ClampCursor)
	return g
}

// HeadZoomConfig returns headzoom.DefaultConfig with the overrides applied.
func (c *TuningConfig) HeadZoomConfig() headzoom.Config {
	h := headzoom.DefaultConfig()
	setFloat(&h.Alpha, c.HeadAlpha)
	setFloat(&h.Deadzone, c.HeadDeadzone)
	setFloat(&h.Sensitivity, c.HeadSensitivity)
	setInt(&h.WarmupFrames, c.HeadWarmupFrames)
	return h
}

// ViewerConfig returns viewer.DefaultConfig with the overrides applied.
func (c *TuningConfig) ViewerConfig() viewer.Config {
	v := viewer.DefaultConfig()
	setFloat(&v.MinScale, c.MinScale)
	setFloat(&v.MaxScale, c.MaxScale)
	setFloat(&v.WheelFactor, c.WheelFactor)
	setDuration(&v.DefaultDuration, c.AnimationDuration)
	return v
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// setDuration keeps the default when the string is empty or unparsable.
func setDuration(dst *time.Duration, v *string) {
	if v == nil || *v == "" {
		return
	}
	if d, err := time.ParseDuration(*v); err == nil {
		*dst = d
	}
}
