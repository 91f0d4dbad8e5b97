package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/text"
	"github.com/goliatone/go-fraudform/pkg/renderers/vanilla"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		modelID  string
		renderer string
		output   string
		action   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form of a model without submitting it",
		Long: `Render the prediction form of a model to stdout or a file. The vanilla
renderer writes a standalone HTML page; the text renderer lists the fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			html, err := vanilla.New()
			if err != nil {
				return err
			}
			registry := render.NewRegistry(html, text.New())

			manager := a.manager(a.client())
			defer manager.Close()

			manager.LoadCatalog(ctx)
			id := firstNonEmpty(modelID, a.cfg.PreferredModel)
			if err := wait(ctx, manager.SelectModel(ctx, id)); err != nil {
				return err
			}

			data, _, err := registry.Render(ctx, strings.ToLower(renderer), manager.Snapshot(), render.RenderOptions{
				Action: action,
				Method: "post",
				Locale: a.cfg.Locale,
				Theme:  a.cfg.Theme.RendererConfig(),
			})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("form rendered", zap.String("renderer", renderer), zap.String("output", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "model id (default: the preferred model)")
	cmd.Flags().StringVarP(&renderer, "renderer", "r", vanilla.Name, "renderer: vanilla, text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&action, "action", "/", "form action URL for HTML output")
	return cmd
}
