package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python service may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Frames are written as a 4-byte big-endian length followed by JPEG bytes;
// the service answers with one JSON line per frame.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	lastUsed   time.Time
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection or by Start.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findMediaPipeScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("mediapipe_service.py not found")
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// OpenMediaPipe creates a detector and starts its service, loading the models.
// It is the Provider factory used by the application.
func OpenMediaPipe(config Config) Factory {
	return func(ctx context.Context) (Detector, error) {
		d, err := NewMediaPipeDetector(config)
		if err != nil {
			return nil, err
		}
		if err := d.Start(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Start launches the Python service if it is not running yet.
// If ctx is cancelled while the service starts, the process is stopped again.
func (d *MediaPipeDetector) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		d.shutdown()
		return err
	}
	return nil
}

// Detect analyzes a frame and returns detected landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Result{}, fmt.Errorf("empty frame")
	}

	if err := d.ensureStarted(); err != nil {
		return Result{}, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Result{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return Result{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return Result{}, fmt.Errorf("write data: %w", err)
	}

	// Read JSON response
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	result, err := parseResponse([]byte(line))
	if err != nil {
		return Result{}, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	args := []string{
		d.scriptPath,
		"--hands=" + strconv.FormatBool(d.config.Hands),
		"--faces=" + strconv.FormatBool(d.config.Faces),
		"--min-confidence=" + strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking=" + strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	}
	d.cmd = exec.Command(pythonPath, args...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)

	// The service prints a ready line once both models are loaded.
	ready, err := d.stdout.ReadString('\n')
	if err != nil {
		d.stdin.Close()
		d.cmd.Wait()
		return fmt.Errorf("wait for mediapipe service: %w", err)
	}
	var status struct {
		Ready bool   `json:"ready"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(ready), &status); err != nil || !status.Ready {
		d.stdin.Close()
		d.cmd.Wait()
		if status.Error != "" {
			return fmt.Errorf("mediapipe service: %s", status.Error)
		}
		return fmt.Errorf("mediapipe service did not report ready")
	}

	d.started = true
	d.lastUsed = time.Now()

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findMediaPipeScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".panmotion/scripts/mediapipe_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".panmotion/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonResponse represents the JSON structure from the Python service.
type jsonResponse struct {
	Hand *jsonHand `json:"hand"`
	Face *jsonFace `json:"face"`
}

type jsonHand struct {
	Points     []Point2D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

type jsonFace struct {
	Points []Point2D `json:"points"`
}

// parseResponse decodes one service line. Hands with fewer than 21 points and
// empty face meshes are treated as not detected.
func parseResponse(line []byte) (Result, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	var result Result
	if resp.Hand != nil && len(resp.Hand.Points) >= NumLandmarks {
		hand := &HandLandmarks{
			Handedness: resp.Hand.Handedness,
			Score:      resp.Hand.Score,
		}
		copy(hand.Points[:], resp.Hand.Points)
		result.Hand = hand
	}
	if resp.Face != nil && len(resp.Face.Points) > 0 {
		result.Face = &FaceLandmarks{Points: resp.Face.Points}
	}
	return result, nil
}
