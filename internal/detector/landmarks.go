// Package detector provides the landmark oracle interface, landmark types and
// the geometric features derived from them.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// NumFaceLandmarks is the size of a MediaPipe face mesh.
const NumFaceLandmarks = 468

// TipIndices lists the five fingertip landmarks, thumb first.
var TipIndices = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point2D is a 2D point. Landmarks use normalized [0,1] image coordinates;
// cursor and transform code use container pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point2D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FaceLandmarks holds a face mesh in normalized image coordinates.
type FaceLandmarks struct {
	Points []Point2D `json:"points"`
}

// Result is the oracle output for one video frame. A nil Hand or Face means
// that subject was not detected in the frame.
type Result struct {
	Hand *HandLandmarks `json:"hand,omitempty"`
	Face *FaceLandmarks `json:"face,omitempty"`
}

// Empty reports whether nothing was detected.
func (r Result) Empty() bool {
	return r.Hand == nil && r.Face == nil
}
