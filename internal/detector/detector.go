package detector

import "gocv.io/x/gocv"

// Detector defines the interface for landmark oracle implementations.
type Detector interface {
	// Detect analyzes a video frame and returns at most one hand and one face.
	// A frame with no subject returns an empty Result and a nil error.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// Hands enables hand landmark detection.
	Hands bool

	// Faces enables face mesh detection.
	Faces bool

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Hands:           true,
		Faces:           true,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
