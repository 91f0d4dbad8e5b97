package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fraudform/pkg/payload"
)

func newSchemaCmd(a *app) *cobra.Command {
	var (
		asOpenAPI bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "schema <model-id>",
		Short: "Show the inputs a model requires",
		Long: `Show the ordered inputs a model requires. With --openapi the request
contract for the prediction endpoint is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.client().GetSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			format = strings.ToLower(strings.TrimSpace(format))

			var doc any = schema
			if asOpenAPI {
				doc = payload.Document(schema)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml":
				data, err := payload.EncodeYAML(doc)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "", "table":
				if asOpenAPI {
					return fmt.Errorf("--openapi requires --format yaml or json")
				}
			default:
				return fmt.Errorf("unknown format %q (table, yaml, json)", format)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tTYPE\tLABEL")
			for i, field := range schema.Fields {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, field.Name, field.Kind, field.DisplayLabel())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asOpenAPI, "openapi", false, "print the OpenAPI request contract")
	cmd.Flags().StringVar(&format, "format", "", "output format: table, yaml, json (default table, yaml with --openapi)")
	cmd.PreRun = func(*cobra.Command, []string) {
		if asOpenAPI && format == "" {
			format = "yaml"
		}
	}
	return cmd
}
