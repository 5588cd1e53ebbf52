// Command multiview-server serves a multi-source live stream composited
// through ffmpeg into a single configurable-layout output, with an HTTP API
// for catalog, layout, and audio control.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapetech/multiview/internal/api"
	"github.com/snapetech/multiview/internal/catalog"
	"github.com/snapetech/multiview/internal/config"
	"github.com/snapetech/multiview/internal/encoder"
	"github.com/snapetech/multiview/internal/httpclient"
	"github.com/snapetech/multiview/internal/watchdog"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()

	cat := catalog.New()
	if cfg.M3USource != "" {
		if err := cat.Load(cfg.M3USource, httpclient.Default()); err != nil {
			log.Printf("initial catalog load: %v", err)
		} else {
			log.Printf("catalog: loaded %d channels", cat.Count())
		}
	}

	ffmpegPath, err := encoder.LookPath(cfg.FFmpegPath)
	if err != nil {
		log.Fatalf("ffmpeg not found: %v", err)
	}
	cfg.FFmpegPath = ffmpegPath

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 30*time.Second)
	profile := encoder.Probe(probeCtx, cfg.FFmpegPath, cfg.EncoderPreference)
	cancelProbe()
	log.Printf("encoder: using profile %q", profile.Name)

	srv := api.NewServer(cfg, cat, profile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wcfg := watchdog.Config{
		PollInterval: 5 * time.Second,
		IdleTimeout:  cfg.IdleTimeout,
		SizeBound:    cfg.MaxStreamSize,
	}
	go watchdog.Run(ctx, wcfg, srv)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("api: %v", err)
	}
}
