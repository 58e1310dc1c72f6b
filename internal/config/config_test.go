package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, k := range []string{"VELLUM_MASK_ERRORS", "VELLUM_DEBUG", "VELLUM_JSON_LOGS"} {
		os.Unsetenv(k)
	}
}

func TestDefaultsHaveNoMasksAndLoggingOff(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, cfg.MaskErrors)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.JSONLogs)
}

func TestLoadEnvReadsMaskErrorsAsCommaSeparatedList(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("VELLUM_MASK_ERRORS", "eUnknownName, eRedefinition")

	cfg := LoadEnv()
	assert.Equal(t, []string{"eUnknownName", "eRedefinition"}, cfg.MaskErrors)
}

func TestLoadEnvReadsDebugAndJSONLogsBooleans(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("VELLUM_DEBUG", "true")
	t.Setenv("VELLUM_JSON_LOGS", "1")

	cfg := LoadEnv()
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.JSONLogs)
}

func TestLoadEnvLeavesDefaultsWhenUnset(t *testing.T) {
	clearConfigEnvVars(t)

	cfg := LoadEnv()
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadEnvIgnoresUnparseableBooleanAndKeepsFallback(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("VELLUM_DEBUG", "not-a-bool")

	cfg := LoadEnv()
	assert.False(t, cfg.Debug)
}
