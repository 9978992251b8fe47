package cli

import (
	"fmt"
	"os"
	"strings"

	"catalogdebug/internal/flags"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix names the environment variables that stand in for flags left
// unset on the command line, e.g. CATALOGDEBUG_LOG_FORMAT=json.
const EnvPrefix = "CATALOGDEBUG"

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "catalogdebug",
	Short: "Start a backend that reports catalog locations and GitHub credentials at startup",
	Long: `catalogdebug starts a minimal plugin backend whose catalog-debug module logs,
once at startup, which catalog locations are configured and whether a GitHub
token is available to read them.

It is diagnostic only: it never ingests, validates or fetches anything, and a
config it cannot read produces a warning instead of a failed start.

Examples:
	# Show available commands and global flags
	catalogdebug --help

	# Start with the default app-config.yaml and .env
	catalogdebug start

	# Layer a local config over the base one
	catalogdebug start --config app-config.yaml --config app-config.local.yaml

	# Print build info
	catalogdebug version`,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return applyEnvFlags(cmd.Flags())
	}
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, flags.FlagLogLevel, opts.LogLevel, "Log level: panic|fatal|error|warn|info|debug|trace (default: info)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFormat, flags.FlagLogFormat, opts.LogFormat, "Log format: text|json|console (default: text)")
}

// applyEnvFlags sets every flag not given on the command line from its
// CATALOGDEBUG_* variable, if that variable is non-empty.
func applyEnvFlags(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if setErr := fs.Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("invalid %s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), setErr)
		}
	})
	return err
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
