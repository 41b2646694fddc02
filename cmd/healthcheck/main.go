package main

import (
	"net/http"
	"os"
	"time"

	"clipvault/pkg/logger"
)

// Probes the API /health endpoint and exits nonzero on failure, for use as a
// container HEALTHCHECK command.
func main() {
	log := logger.New()
	url := envDefault("HEALTH_URL", "http://127.0.0.1:"+envDefault("API_PORT", envDefault("PORT", "8080"))+"/health")
	timeout, err := time.ParseDuration(envDefault("HEALTH_TIMEOUT", "2s"))
	if err != nil {
		timeout = 2 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("health probe failed")
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("unhealthy")
		os.Exit(1)
	}
	log.Info().Dur("latency", time.Since(start)).Str("url", url).Msg("healthy")
}

func envDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}
