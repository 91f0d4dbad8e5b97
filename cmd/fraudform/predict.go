package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/text"
)

// errPredictionFailed makes the process exit non-zero after the failure was
// already printed.
var errPredictionFailed = errors.New("prediction failed")

func newPredictCmd(a *app) *cobra.Command {
	var (
		modelID string
		sets    []string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one prediction request",
		Long: `Load the schema of a model, fill the given fields (every other field keeps
0.0), and submit the request to the scoring service.`,
		Example: `  fraudform predict --model random_forest_tuned_pipeline --set Amount=149.62 --set V1=-1.36`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			assignments, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (text, json)", format)
			}

			client := a.client()
			manager := a.manager(client)
			defer manager.Close()

			id := firstNonEmpty(modelID, a.cfg.PreferredModel)
			if _, err := loadModel(ctx, manager, id); err != nil {
				return err
			}
			for _, kv := range assignments {
				if err := manager.SetFieldValue(kv[0], kv[1]); err != nil {
					return err
				}
			}

			result, err := manager.Submit(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				data, err := text.New(text.WithFieldValues(false)).Render(ctx, manager.Snapshot(), render.RenderOptions{Locale: a.cfg.Locale})
				if err != nil {
					return err
				}
				if _, err := out.Write(data); err != nil {
					return err
				}
			}
			if result.Failed() {
				return errPredictionFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "model id (default: the preferred model)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as Name=value (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
