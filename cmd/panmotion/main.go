package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/config"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/preview"
	"github.com/ayusman/panmotion/internal/server"
	"github.com/ayusman/panmotion/internal/store"
	"github.com/ayusman/panmotion/internal/tray"
	"github.com/ayusman/panmotion/internal/viewer"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	camera := flag.Int("camera", 0, "camera device id")
	tuningPath := flag.String("tuning", "", "path to a JSON tuning file")
	dbPath := flag.String("db", "", "database path (default ~/.panmotion/panmotion.db)")
	useTray := flag.Bool("tray", true, "show the system tray menu")
	width := flag.Float64("width", 1536, "map image width in pixels")
	height := flag.Float64("height", 1024, "map image height in pixels")
	flag.Parse()

	fmt.Println("Panmotion - Hands-free Map Viewer")

	// Initialize the store
	if *dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dbDir := filepath.Join(homeDir, ".panmotion")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		*dbPath = filepath.Join(dbDir, "panmotion.db")
	}

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	tuning := config.EmptyTuningConfig()
	if *tuningPath != "" {
		if tuning, err = config.LoadTuningConfig(*tuningPath); err != nil {
			log.Fatalf("Failed to load tuning: %v", err)
		}
		fmt.Printf("Loaded tuning from: %s\n", *tuningPath)
	}

	frames := preview.NewBuffer()
	a, err := app.New(app.Config{
		Store:   st,
		Camera:  capture.NewCamera(capture.Config{DeviceID: *camera}),
		Tuning:  tuning,
		Content: viewer.Size{Width: *width, Height: *height},
		Preview: frames,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.Close()

	hub := server.NewHub()

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       a,
		Hub:       hub,
		Preview:   frames,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go a.Run(ctx)
	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Printf("Server failed: %v", err)
			cancel()
		}
	}()

	if !*useTray {
		a.SetSink(hub)
		a.RestoreFeatures()
		<-ctx.Done()
		return
	}

	features := a.Features()
	t := tray.New(features.Hands, features.Head)
	t.OnHandsToggle(a.SetHandsEnabled)
	t.OnHeadToggle(a.SetHeadEnabled)
	t.OnReset(a.ResetView)
	t.OnSettings(func() { openBrowser(settingsURL(*addr)) })
	t.OnQuit(cancel)

	a.SetSink(app.MultiSink(hub, traySink{tray: t}))
	a.RestoreFeatures()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	// The tray owns the main thread until it quits.
	t.Run()
}

// traySink mirrors feature and gesture events into the tray menu.
type traySink struct {
	tray *tray.Tray
}

func (s traySink) Publish(v any) {
	m, ok := v.(app.Message)
	if !ok {
		return
	}
	switch m.Kind {
	case app.KindFeatures:
		s.tray.SetFeatures(m.Features.Hands, m.Features.Head)
	case app.KindGesture:
		switch m.Gesture.Type {
		case gesture.EventDragStart, gesture.EventDoubleTap, gesture.EventReset:
			s.tray.SetLastGesture(string(m.Gesture.Type))
		}
	}
}

func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.panmotion/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".panmotion", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
