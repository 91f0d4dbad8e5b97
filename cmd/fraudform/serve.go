package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fraudform/internal/server"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				registerer prometheus.Registerer
				gatherer   prometheus.Gatherer
				options    []scoring.Option
			)
			if a.cfg.Server.Metrics {
				registerer = prometheus.DefaultRegisterer
				gatherer = prometheus.DefaultGatherer
				metrics, err := scoring.NewMetrics(registerer)
				if err != nil {
					return err
				}
				options = append(options, scoring.WithMetrics(metrics))
			}

			srv, err := server.New(a.client(options...),
				server.WithLogger(a.logger.Named("http")),
				server.WithPreferredModel(a.cfg.PreferredModel),
				server.WithLocale(a.cfg.Locale),
				server.WithTheme(a.cfg.Theme.RendererConfig()),
				server.WithMetrics(registerer, gatherer),
			)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}
