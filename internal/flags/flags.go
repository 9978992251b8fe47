package flags

// Package flags defines canonical CLI flag names shared across commands and
// tests. IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringSliceVar(&opts.ConfigPaths, flags.FlagConfig, nil, "...")
//	arg := "--" + flags.FlagConfig
const (
	// Backend
	FlagConfig  = "config"
	FlagEnvFile = "env-file"
	FlagWait    = "wait"

	// Logging
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)
