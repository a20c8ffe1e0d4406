// Package main demonstrates the preloader against a simulated render loop:
// it registers a few slow tasks, starts them, and ticks a textual loading
// overlay until the pool goes quiescent.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/nitsuj11595/rappid/internal/config"
	"github.com/nitsuj11595/rappid/internal/platform/logger"
	"github.com/nitsuj11595/rappid/preload"
)

// assets stands in for the host sketch: the object whose methods are
// registered by name.
type assets struct{}

func (assets) LoadShapes() {
	time.Sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
}

func (assets) LoadFonts() {
	time.Sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
}

func (assets) LoadPalette() error {
	time.Sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.Setup(cfg, nil)
	lg.Info("configuration loaded",
		"workers", cfg.Workers,
		"log_level", cfg.LogLevel)

	p := preload.NewPreloader(assets{}, preload.Config{Workers: cfg.Workers}, lg)
	defer p.Stop()

	p.SetOverlay(preload.OverlayFunc(func(stats preload.Stats) {
		fmt.Printf("\rLoading... %d/%d", stats.Completed, stats.Submitted)
	}))

	p.AddTask("LoadShapes")
	p.AddTask("LoadFonts")
	p.AddTask("LoadPalette")
	p.AddFunc("warm caches", func(ctx context.Context) error {
		time.Sleep(400 * time.Millisecond)
		return nil
	})

	p.Start()

	// Simulated render loop: one Frame call per tick, as a host framework
	// would do once per drawn frame.
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for p.IsLoading() {
		<-ticker.C
		p.Frame()
	}

	fmt.Println("\rLoading done.        ")
}
