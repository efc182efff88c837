package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment. A .env file
// in the working directory is honored for local development; real
// environment variables win.
type Config struct {
	Addr    string
	LogFile string

	TMDBAPIKey string
	OMDBAPIKey string
	Language   string

	// Vote-count floors for discover queries; the upstream default is a
	// policy choice, so both are tunable.
	VoteCountBase  int
	VoteCountRated int

	SimilarLimit int
	CastLimit    int

	// Per-IP request rate (requests per second) and burst for the API.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Load reads configuration from the environment. The TMDB key is mandatory:
// without it every catalog call would fail, so startup aborts instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getenv("CINEBROWSE_ADDR", ":8080"),
		LogFile:         getenv("CINEBROWSE_LOG_FILE", ""),
		TMDBAPIKey:      strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		OMDBAPIKey:      strings.TrimSpace(os.Getenv("OMDB_API_KEY")),
		Language:        getenv("CINEBROWSE_LANGUAGE", "en-US"),
		VoteCountBase:   getenvInt("CINEBROWSE_VOTE_COUNT_BASE", 50),
		VoteCountRated:  getenvInt("CINEBROWSE_VOTE_COUNT_RATED", 20),
		SimilarLimit:    getenvInt("CINEBROWSE_SIMILAR_LIMIT", 10),
		CastLimit:       getenvInt("CINEBROWSE_CAST_LIMIT", 10),
		RateLimitPerSec: getenvFloat("CINEBROWSE_RATE_LIMIT", 10),
		RateLimitBurst:  getenvInt("CINEBROWSE_RATE_BURST", 30),
	}
	if cfg.TMDBAPIKey == "" {
		return nil, errors.New("TMDB_API_KEY is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
