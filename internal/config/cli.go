package config

import "github.com/spf13/pflag"

// RegisterFlags adds the compiler's configuration flags to flags, seeded
// with base's values as their pflag defaults. Seeding the default from
// base (already layered from .env/environment) rather than from a fixed
// zero value is what lets FromFlags treat "flag left untouched" and "flag
// explicitly set to its env-derived value" identically.
func RegisterFlags(flags *pflag.FlagSet, base Config) {
	flags.StringSlice("mask", base.MaskErrors, "disable one or more build-error kinds (repeatable or comma-separated)")
	flags.Bool("debug", base.Debug, "enable verbose per-pass structured logging")
	flags.Bool("json-logs", base.JSONLogs, "emit debug logs as JSON instead of text")
}

// FromFlags returns base with every flag RegisterFlags added overlaid on
// top, giving CLI flags the highest precedence of the three
// configuration layers.
func FromFlags(flags *pflag.FlagSet, base Config) Config {
	cfg := base
	if v, err := flags.GetStringSlice("mask"); err == nil {
		cfg.MaskErrors = v
	}
	if v, err := flags.GetBool("debug"); err == nil {
		cfg.Debug = v
	}
	if v, err := flags.GetBool("json-logs"); err == nil {
		cfg.JSONLogs = v
	}
	return cfg
}
