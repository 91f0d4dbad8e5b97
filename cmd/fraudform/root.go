package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/internal/config"
	"github.com/goliatone/go-fraudform/internal/logging"
	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

// app holds what PersistentPreRunE resolves for the subcommands.
type app struct {
	cfgFile string
	viper   *viper.Viper
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fraudform",
		Short: "Credit card fraud prediction forms",
		Long: `fraudform talks to the fraud scoring service: it lists the available
models, builds the input form each model requires, submits predictions, and
serves the same form over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./fraudform.yaml or $HOME/.config/fraudform/fraudform.yaml)")
	flags.String("base-url", "", "scoring service base URL, e.g. http://localhost:5000")
	flags.Duration("timeout", config.DefaultTimeout, "per-request timeout")
	flags.String("locale", config.DefaultLocale, "interface language (it, en)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	root.AddCommand(
		newModelsCmd(a),
		newSchemaCmd(a),
		newPredictCmd(a),
		newValidateCmd(a),
		newPromptCmd(a),
		newRenderCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	a.viper = config.New(a.cfgFile)
	bindings := map[string]string{
		"base_url":       "base-url",
		"timeout":        "timeout",
		"locale":         "locale",
		"logging.level":  "log-level",
		"logging.format": "log-format",
		"server.addr":    "addr",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := a.viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) client(options ...scoring.Option) *scoring.Client {
	base := []scoring.Option{
		scoring.WithBaseURL(a.cfg.BaseURL),
		scoring.WithTimeout(a.cfg.Timeout),
		scoring.WithLogger(a.logger.Named("scoring")),
	}
	return scoring.New(append(base, options...)...)
}

func (a *app) manager(client *scoring.Client) *form.Manager {
	return form.New(client, client,
		form.WithCatalog(client),
		form.WithPreferredModel(a.cfg.PreferredModel),
		form.WithLogger(a.logger.Named("form")),
	)
}
