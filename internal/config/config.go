package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Options holds the host runtime settings supplied on the command line. The
// application config itself (catalog, integrations, ...) lives in a Tree.
type Options struct {
	// MAINTAINER NOTE: If you add/change/remove fields here, keep the CLI flags
	// in internal/cli/start.go in sync.

	// ConfigPaths lists the YAML app-config files to load (see --config).
	// Later files override earlier ones. Values may be repeated flags and/or
	// comma-separated lists.
	ConfigPaths []string

	// EnvFile is a dotenv file loaded into the process environment before the
	// config is read (see --env-file). A missing file is not an error.
	EnvFile string

	// LogLevel is any level accepted by logrus (see --log-level).
	LogLevel string

	// LogFormat controls how log lines are rendered (see --log-format).
	// Allowed values: text, json, console.
	LogFormat string

	// Wait keeps the host running until SIGINT/SIGTERM after startup (see --wait).
	Wait bool
}

func New() *Options {
	return &Options{
		ConfigPaths: []string{"app-config.yaml"},
		EnvFile:     ".env",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func (o *Options) Validate() error {
	o.ConfigPaths = splitCommaList(o.ConfigPaths)
	if len(o.ConfigPaths) == 0 {
		return errors.New("at least one --config file must be provided")
	}

	o.EnvFile = strings.TrimSpace(o.EnvFile)

	o.LogLevel = normalizeEnumValue(o.LogLevel)
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	if _, err := log.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("unsupported --log-level: %s (must be one of: panic, fatal, error, warn, info, debug, trace)", o.LogLevel)
	}

	o.LogFormat = normalizeEnumValue(o.LogFormat)
	if o.LogFormat == "" {
		return errors.New("--log-format must be one of: text, json, console")
	}
	if o.LogFormat != "text" && o.LogFormat != "json" && o.LogFormat != "console" {
		return fmt.Errorf("unsupported --log-format: %s (must be one of: text, json, console)", o.LogFormat)
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
