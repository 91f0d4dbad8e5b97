package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/payload"
	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/text"
)

// Name is the registry key of the TUI renderer.
const Name = "tui"

// Renderer prompts for the fields of a form snapshot in the terminal. Render
// collects one value per field and returns the request body; Run drives a
// whole session against a form.Manager.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	locale       string
	results      render.Renderer
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.results == nil {
		r.results = text.New(text.WithHeader(false), text.WithFieldValues(false))
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts for every field of view in schema order, starting from the
// values already in the snapshot, and serialises the resulting request.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if opts.Locale == "" {
		opts.Locale = r.locale
	}

	values := view.Values.Clone()
	if values == nil {
		values = model.NewFormValues(view.Schema)
	}
	for _, field := range view.Fields() {
		raw, err := r.promptNumber(ctx, field, values.Raw(field.Name))
		if err != nil {
			return nil, err
		}
		values[field.Name] = raw
	}

	request, err := payload.Build(values, view.Schema, view.SelectedID)
	if err != nil {
		return nil, err
	}

	if r.outputFormat == OutputFormatPrettyText {
		view.Values = values
		return text.New().Render(ctx, view, opts)
	}
	out, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode request: %w", err)
	}
	return append(out, '\n'), nil
}

// promptNumber asks for one field until the answer parses as a finite
// number. Every field kind goes through here.
func (r *Renderer) promptNumber(ctx context.Context, field model.FieldSpec, current string) (string, error) {
	validate := func(input string) error {
		if _, err := payload.ParseNumber(input); err != nil {
			return &payload.ValidationError{
				FieldName: field.Name,
				Label:     field.DisplayLabel(),
				Raw:       input,
				Err:       err,
			}
		}
		return nil
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message:   field.DisplayLabel(),
			Default:   current,
			Help:      field.Name,
			Validator: validate,
		})
		if err != nil {
			return "", err
		}
		if input == "" {
			input = current
		}
		if err := validate(input); err != nil {
			if infoErr := r.driver.Info(ctx, err.Error()); infoErr != nil {
				return "", infoErr
			}
			continue
		}
		return input, nil
	}
}
