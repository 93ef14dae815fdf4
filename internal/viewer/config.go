package viewer

import "time"

// Config holds the engine limits.
type Config struct {
	MinScale float64
	MaxScale float64
	// WheelFactor converts wheel delta to zoom: factor = 1 - deltaY*WheelFactor.
	WheelFactor float64
	// DefaultDuration is used by AnimateTo when no duration is given.
	DefaultDuration time.Duration
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MinScale:        1,
		MaxScale:        20,
		WheelFactor:     0.002,
		DefaultDuration: 400 * time.Millisecond,
	}
}
