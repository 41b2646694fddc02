package main

import (
	"context"
	"path/filepath"
	"time"

	"clipvault/internal/catalog"
	"clipvault/internal/config"
	"clipvault/internal/thumbs"
	"clipvault/pkg/logger"
)

// Standalone reconcile/thumbnail worker. The API server already reconciles
// on every catalog read; this keeps thumbnails warm for large libraries
// without waiting for page loads.
func main() {
	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	store := catalog.NewStore(cfg.StatePath())
	reconciler := catalog.NewReconciler(store, cfg.MediaRoot, log)
	gen := thumbs.NewGenerator(cfg.ThumbDir(), cfg.ThumbSize, log)

	log.Info().Str("media_root", cfg.MediaRoot).Dur("interval", cfg.ScanInterval).Msg("scanner starting")
	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()
	for {
		start := time.Now()
		records, err := reconciler.Reconcile()
		if err != nil {
			log.Error().Err(err).Msg("reconcile failed")
		} else {
			done := gen.Sync(context.Background(), records, func(fileName string) string {
				return filepath.Join(cfg.MediaRoot, fileName)
			})
			log.Info().
				Int("clips", len(records)).
				Int("thumbnails", done).
				Dur("took", time.Since(start)).
				Msg("scan completed")
		}
		<-ticker.C
	}
}
