// Package preview annotates camera frames with the tracking state and keeps
// the latest encoded frame for MJPEG streaming.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/gesture"
)

// tipColors are the fingertip dot colors, thumb to pinky.
var tipColors = [5]color.RGBA{
	{255, 100, 100, 0},
	{100, 100, 255, 0},
	{255, 200, 50, 0},
	{50, 220, 150, 0},
	{200, 100, 255, 0},
}

var (
	pinchLineIdle   = color.RGBA{200, 200, 200, 0}
	pinchLineActive = color.RGBA{100, 255, 100, 0}
	graspColor      = color.RGBA{255, 220, 50, 0}
	shakeColor      = color.RGBA{100, 200, 255, 0}
	faceColor       = color.RGBA{100, 200, 255, 0}
)

const (
	tipRadius       = 4
	shakeRingRadius = 20
	// minShakeProgress hides the ring for ordinary hand jitter.
	minShakeProgress = 0.1
)

// Options controls what Annotate draws.
type Options struct {
	// Mirror flips the frame horizontally after drawing so the preview reads
	// like a mirror.
	Mirror bool
	Hand   bool
	Face   bool
}

// DefaultOptions draws everything on a mirrored preview.
func DefaultOptions() Options {
	return Options{Mirror: true, Hand: true, Face: true}
}

// Annotate draws the detection result and the classifier overlay onto frame
// in place. Landmarks are normalized, so they are scaled by the frame size.
func Annotate(frame *gocv.Mat, res detector.Result, ov gesture.Overlay, opts Options) {
	if frame == nil || frame.Empty() {
		return
	}
	w, h := float64(frame.Cols()), float64(frame.Rows())
	px := func(p detector.Point2D) image.Point {
		return image.Pt(int(math.Round(p.X*w)), int(math.Round(p.Y*h)))
	}

	if opts.Hand && res.Hand != nil {
		lm := res.Hand.Points
		for i, idx := range detector.TipIndices {
			gocv.Circle(frame, px(lm[idx]), tipRadius, tipColors[i], -1)
		}

		line := pinchLineIdle
		if ov.PinchDown {
			line = pinchLineActive
		}
		gocv.Line(frame, px(lm[detector.ThumbTip]), px(lm[detector.IndexTip]), line, 2)

		if ov.GraspActive {
			r := int(math.Round(ov.GraspRadius * w * 0.6))
			gocv.Circle(frame, px(ov.Centroid), r, graspColor, 2)
		}

		if ov.ShakeProgress > minShakeProgress {
			// The ring starts at twelve o'clock and grows clockwise.
			gocv.Ellipse(frame, px(ov.Centroid), image.Pt(shakeRingRadius, shakeRingRadius),
				0, -90, -90+ov.ShakeProgress*360, shakeColor, 3)
		}
	}

	if opts.Face && res.Face != nil && len(res.Face.Points) > 0 {
		b := res.Face.Bounds()
		rect := image.Rect(
			int(math.Round(b.MinX*w)), int(math.Round(b.MinY*h)),
			int(math.Round(b.MaxX*w)), int(math.Round(b.MaxY*h)),
		)
		gocv.Rectangle(frame, rect, faceColor, 2)
	}

	if opts.Mirror {
		gocv.Flip(*frame, frame, 1)
	}
}

// EncodeJPEG encodes frame as JPEG.
func EncodeJPEG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy it out.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
