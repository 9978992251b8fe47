package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"catalogdebug/internal/backend"
	"catalogdebug/internal/catalogdebug"
	"catalogdebug/internal/config"
	"catalogdebug/internal/flags"
	"catalogdebug/internal/lifecycle"
	"catalogdebug/internal/logging"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var opts = config.New()

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the backend and run its startup hooks",
	Long: `Start the backend: load the environment and app config, register the
catalog-debug module and run the startup phase.

Configuration:
	--config may be repeated; later files override earlier ones.
	String values may reference environment variables as ${NAME}.

Environment:
	GITHUB_TOKEN is read from the process environment, after the --env-file
	(default: .env) has been loaded. Variables already set are not overridden.
	A token under integrations.github[0].token counts as well.
	Any flag left off the command line may be set as CATALOGDEBUG_<FLAG>,
	e.g. CATALOGDEBUG_LOG_FORMAT=json or CATALOGDEBUG_CONFIG=a.yaml,b.yaml.

Output:
	Log lines are written to stderr. With --log-format json each line is a JSON
	object with a "severity" field.

Exit codes:
	0 = started (startup hook failures are logged, not fatal)
	1 = the options were invalid or the config files could not be loaded

Examples:
	catalogdebug start
	catalogdebug start --config app-config.yaml,app-config.production.yaml --log-format json
	catalogdebug start --wait
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := opts.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if opts.Wait {
			var stop context.CancelFunc
			ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
		}

		if err := runStart(ctx, opts, cmd.ErrOrStderr()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runStart expects validated options. With o.Wait it blocks until ctx is done.
func runStart(ctx context.Context, o *config.Options, out io.Writer) error {
	logger := log.New()
	if err := logging.Configure(logger, o.LogLevel, o.LogFormat, out); err != nil {
		return err
	}
	root := logging.New(logger)

	loadEnvFile(root, o.EnvFile)

	tree, err := config.Load(o.ConfigPaths)
	if err != nil {
		return err
	}
	root.Info("Loaded config", logging.Fields{"files": o.ConfigPaths})

	b := backend.New(tree, lifecycle.New(root), root)
	if err := b.Add(catalogdebug.Module(os.Getenv)); err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start backend: %w", err)
	}
	root.Info("Backend started")

	if o.Wait {
		<-ctx.Done()
		root.Info("Stopping backend")
	}

	// ctx may already be canceled here; shutdown hooks get a fresh one.
	if err := b.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop backend: %w", err)
	}
	return nil
}

func loadEnvFile(logger logging.Logger, path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No env file found, continuing with system env vars", logging.Fields{"file": path})
			return
		}
		logger.Warn("Could not load env file, continuing with system env vars", logging.Fields{"file": path, "error": err.Error()})
	}
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringSliceVar(&opts.ConfigPaths, flags.FlagConfig, opts.ConfigPaths, "App config file(s) (repeatable; comma-separated accepted; later files override earlier ones)")
	startCmd.Flags().StringVar(&opts.EnvFile, flags.FlagEnvFile, opts.EnvFile, "Dotenv file to load before reading config (missing file is ignored)")
	startCmd.Flags().BoolVar(&opts.Wait, flags.FlagWait, false, "Keep running after startup until SIGINT/SIGTERM, then run shutdown hooks")
}
