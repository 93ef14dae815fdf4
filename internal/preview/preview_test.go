package preview

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/gesture"
)

func TestBuffer_LatestAndNext(t *testing.T) {
	b := NewBuffer()

	frame, seq := b.Latest()
	assert.Nil(t, frame)
	assert.Zero(t, seq)

	b.Publish([]byte("one"))
	got, seq, err := b.Next(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)
	assert.Equal(t, uint64(1), seq)

	done := make(chan []byte)
	go func() {
		f, _, err := b.Next(context.Background(), seq)
		if err == nil {
			done <- f
		}
		close(done)
	}()

	b.Publish([]byte("two"))
	select {
	case f := <-done:
		assert.Equal(t, []byte("two"), f)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake on Publish")
	}
}

func TestBuffer_NextCancelled(t *testing.T) {
	b := NewBuffer()
	b.Publish([]byte("x"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, seq, err := b.Next(ctx, 1)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, uint64(1), seq)
}

func TestAnnotate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res := detector.Result{
		Hand: detector.FistLandmarks(0.5, 0.5),
		Face: detector.FaceMeshLandmarks(0.5, 0.4, 0.3),
	}
	ov := gesture.Overlay{
		HandVisible:   true,
		GraspActive:   true,
		ShakeProgress: 0.5,
		Centroid:      detector.Point2D{X: 0.5, Y: 0.5},
		GraspRadius:   0.05,
	}

	Annotate(&frame, res, ov, DefaultOptions())

	assert.Equal(t, 320, frame.Cols())
	assert.Equal(t, 240, frame.Rows())
	assert.NotZero(t, gocv.CountNonZero(toGray(t, frame)), "overlay should draw on a black frame")

	jpeg, err := EncodeJPEG(frame)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(jpeg, []byte{0xFF, 0xD8}), "JPEG SOI marker")
}

func TestAnnotate_NothingToDraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Annotate(&frame, detector.Result{}, gesture.Overlay{}, DefaultOptions())
	assert.Zero(t, gocv.CountNonZero(toGray(t, frame)))

	assert.NotPanics(t, func() {
		Annotate(nil, detector.Result{}, gesture.Overlay{}, DefaultOptions())
	})
}

func toGray(t *testing.T, m gocv.Mat) gocv.Mat {
	t.Helper()
	gray := gocv.NewMat()
	t.Cleanup(func() { gray.Close() })
	gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	return gray
}
