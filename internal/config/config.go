// Package config loads compiler options in layers: built-in defaults, an
// optional .env file, VELLUM_-prefixed environment variables, and finally
// CLI flags layered on top by the caller.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the options that shape one compilation run.
type Config struct {
	// MaskErrors lists diagnostics.ErrorKind values (by their string
	// spelling) to disable for this run.
	MaskErrors []string
	// Debug enables verbose per-pass structured logging.
	Debug bool
	// JSONLogs switches the debug logger's encoding from text to JSON.
	JSONLogs bool
}

// Defaults returns the built-in configuration baseline: no masked error
// kinds, debug logging off, text-encoded logs.
func Defaults() Config {
	return Config{}
}

// LoadEnv layers an optional .env file and then VELLUM_-prefixed
// environment variables on top of Defaults(). A missing .env file is not
// an error -- godotenv.Load only overrides process environment variables
// that are not already set, so an explicitly exported VELLUM_* variable
// always wins over one merely named in .env.
func LoadEnv() Config {
	_ = godotenv.Load()

	cfg := Defaults()
	if v := os.Getenv("VELLUM_MASK_ERRORS"); v != "" {
		cfg.MaskErrors = splitMaskList(v)
	}
	if v, ok := os.LookupEnv("VELLUM_DEBUG"); ok {
		cfg.Debug = parseBool(v, cfg.Debug)
	}
	if v, ok := os.LookupEnv("VELLUM_JSON_LOGS"); ok {
		cfg.JSONLogs = parseBool(v, cfg.JSONLogs)
	}
	return cfg
}

func splitMaskList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
