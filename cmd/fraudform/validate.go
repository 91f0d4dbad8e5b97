package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fraudform/pkg/validation"
)

var errInvalidPayload = errors.New("payload does not match the model contract")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model-id> [file]",
		Short: "Check a prediction request body against a model without submitting it",
		Long: `Check a JSON prediction request body against the inputs of a model. The
body is read from file, or from stdin when file is omitted or "-". Every
problem is listed; the command fails when there is at least one.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) == 1 || args[1] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			schema, err := a.client().GetSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := validation.ValidatePayload(cmd.Context(), schema, raw)
			out := cmd.OutOrStdout()
			if result.Valid {
				_, err := fmt.Fprintln(out, "ok")
				return err
			}
			for _, issue := range result.Issues {
				if issue.Field != "" {
					fmt.Fprintf(out, "%s: %s\n", issue.Field, issue.Message)
					continue
				}
				fmt.Fprintln(out, issue.Message)
			}
			return errInvalidPayload
		},
	}
}
