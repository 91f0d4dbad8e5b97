package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/render"
)

// OutputFormat controls how Render serialises collected values.
type OutputFormat string

const (
	// OutputFormatJSON emits the prediction request body.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits the text rendering of the form.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithLocale selects the chrome message catalog.
func WithLocale(locale string) Option {
	return func(r *Renderer) {
		r.locale = locale
	}
}

// WithResultRenderer replaces the renderer used to print results.
func WithResultRenderer(renderer render.Renderer) Option {
	return func(r *Renderer) {
		if renderer != nil {
			r.results = renderer
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
