package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fraudform/pkg/renderers/tui"
)

func newPromptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "prompt",
		Aliases: []string{"tui"},
		Short:   "Run an interactive prediction session in the terminal",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := a.manager(a.client())
			defer manager.Close()

			session := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithLocale(a.cfg.Locale),
				tui.WithLogger(a.logger.Named("tui")),
			)
			return session.Run(cmd.Context(), manager)
		},
	}
}
