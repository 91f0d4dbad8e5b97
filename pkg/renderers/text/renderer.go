// Package text renders a form snapshot as plain text for terminals and logs.
package text

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/render"
)

// Name is the registry key of the text renderer.
const Name = "text"

type Option func(*Renderer)

// WithFieldValues toggles the field listing. It is on by default.
func WithFieldValues(enabled bool) Option {
	return func(r *Renderer) {
		r.fieldValues = enabled
	}
}

// WithHeader toggles the title line. It is on by default.
func WithHeader(enabled bool) Option {
	return func(r *Renderer) {
		r.header = enabled
	}
}

// Renderer writes a form.View as aligned plain text.
type Renderer struct {
	fieldValues bool
	header      bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{fieldValues: true, header: true}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	messages := options.Messages()
	var buf bytes.Buffer

	if r.header {
		fmt.Fprintln(&buf, messages.Title)
	}
	if view.SelectedID != "" {
		label := view.SelectedID
		if descriptor, ok := view.SelectedModel(); ok && descriptor.Label() != descriptor.ID {
			label = fmt.Sprintf("%s (%s)", descriptor.Label(), descriptor.ID)
		}
		fmt.Fprintf(&buf, "%s %s\n", messages.ModelLabel, label)
	}

	switch {
	case view.Loading && len(view.Fields()) == 0:
		fmt.Fprintln(&buf, messages.Loading)
	case r.fieldValues && len(view.Fields()) > 0:
		tw := tabwriter.NewWriter(&buf, 0, 4, 1, ' ', 0)
		for _, field := range view.Fields() {
			fmt.Fprintf(tw, "  %s\t= %s\n", field.DisplayLabel(), view.Value(field.Name))
		}
		if err := tw.Flush(); err != nil {
			return nil, fmt.Errorf("text renderer: %w", err)
		}
	case len(view.Fields()) == 0 && view.FormError == "":
		fmt.Fprintln(&buf, messages.Empty)
	}

	if view.FormError != "" {
		fmt.Fprintf(&buf, "%s: %s\n", messages.ErrorTitle, view.FormError)
	}

	if result := view.Result; result != nil {
		fmt.Fprintln(&buf, messages.ResultHeading(view.ResultModelName()))
		if result.Failed() {
			if view.FormError == "" {
				fmt.Fprintf(&buf, "  %s: %s\n", messages.ErrorTitle, result.Error)
			}
		} else {
			fmt.Fprintf(&buf, "  %s: %s\n", messages.Outcome, result.Verdict)
			fmt.Fprintf(&buf, "  %s: %s\n", messages.Probability, result.ProbabilityPercent())
		}
	}
	return buf.Bytes(), nil
}
