// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/config"
	"github.com/xkilldash9x/webharness/internal/observability"
)

type configKeyType struct{}

var configKey = configKeyType{}

// rootOptions holds the persistent flags. Each root command gets its own copy so tests can
// build as many as they like.
type rootOptions struct {
	cfgFile string
	envFile string
	envName string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "webharness",
		Short:         "webharness drives browser UI tests across browser families.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "webharness"})
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting webharness.",
				zap.String("version", Version),
				zap.String("env", cfg.Environment.Name),
				zap.String("browser", cfg.Browser.Name),
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./webharness.yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the configuration; existing variables win")
	cmd.PersistentFlags().StringVarP(&opts.envName, "env", "e", "", "environment to run against (prod, qa, uat, stage, dev); overrides ENV_NAME")
	cmd.SetVersionTemplate(`{{printf "webharness version %s\n" .Version}}`)

	cmd.AddCommand(
		newRunCmd(),
		newScreenshotCmd(),
		newProbeCmd(),
		newFixtureCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig applies, in order: the dotenv file, defaults, the config file, the environment,
// the --env override and finally the environment profile.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	v, err := config.ReadViper(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	if opts.envName != "" {
		v.Set("environment.name", opts.envName)
	}

	env, err := config.ValidateEnvironment(v.GetString("environment.name"))
	if err != nil {
		return nil, err
	}
	if _, err := config.MergeEnvironmentProfile(v, v.GetString("environment.profiles_dir"), env); err != nil {
		return nil, err
	}
	return config.NewConfigFromViper(v)
}

// configFromContext returns the configuration stored by PersistentPreRunE.
func configFromContext(cmd *cobra.Command) (*config.Config, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
			return cfg, nil
		}
	}
	return nil, errors.New("configuration not loaded")
}

// Execute runs the CLI with a context canceled on SIGINT or SIGTERM, and exits non-zero on
// failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	observability.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
