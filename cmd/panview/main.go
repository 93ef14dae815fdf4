package main

import (
	"context"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/config"
	"github.com/ayusman/panmotion/internal/store"
	"github.com/ayusman/panmotion/internal/tui"
	"github.com/ayusman/panmotion/internal/viewer"
)

func main() {
	camera := flag.Int("camera", 0, "camera device id")
	tuningPath := flag.String("tuning", "", "path to a JSON tuning file")
	dbPath := flag.String("db", "", "sections database (defaults to the built-in sections)")
	width := flag.Float64("width", 1536, "map image width in pixels")
	height := flag.Float64("height", 1024, "map image height in pixels")
	logPath := flag.String("log", "panview.log", "log file; the terminal is busy drawing")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	tuning := config.EmptyTuningConfig()
	if *tuningPath != "" {
		if tuning, err = config.LoadTuningConfig(*tuningPath); err != nil {
			log.Fatalf("Failed to load tuning: %v", err)
		}
	}

	cfg := app.Config{
		Camera: capture.NewCamera(capture.Config{DeviceID: *camera}),
		Tuning: tuning,
	}
	if *dbPath != "" {
		st, err := store.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
		defer st.Close()
		cfg.Store = st
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	m := tui.New(a, viewer.Size{Width: *width, Height: *height})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Fatal(err)
	}
}
