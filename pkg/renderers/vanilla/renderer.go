package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/render"
	rendertemplate "github.com/goliatone/go-fraudform/pkg/render/template"
)

// Name is the registry key of the vanilla renderer.
const Name = "vanilla"

const (
	partialForm   = "forms.form"
	defaultLayout = "templates/form.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithInlineStyles embeds the default stylesheet in a <style> block.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// Renderer produces a standalone HTML page for a form snapshot.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStyles: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := rendertemplate.New(
			rendertemplate.WithFS(cfg.templateFS),
			rendertemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{templates: renderer}
	if cfg.inlineStyles {
		out.stylesheet = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the page for view. Strings coming from the scoring service
// are stripped of markup before they reach the template.
func (r *Renderer) Render(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	themeCtx := render.BuildThemeContext(options.Theme)
	layout := themeCtx.Partial(partialForm, defaultLayout)

	result, err := r.templates.RenderTemplate(layout, r.templateData(view, options, themeCtx))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type modelOption struct {
	ID       string
	Label    string
	Selected bool
}

type resultView struct {
	Class       string
	Heading     string
	Verdict     string
	Probability string
	Failed      bool
}

func (r *Renderer) templateData(view form.View, options render.RenderOptions, themeCtx render.ThemeContext) map[string]any {
	policy := textSanitizer()
	messages := options.Messages()

	models := make([]modelOption, 0, len(view.Models))
	for _, descriptor := range view.Models {
		models = append(models, modelOption{
			ID:       descriptor.ID,
			Label:    policy.Sanitize(descriptor.Label()),
			Selected: descriptor.ID == view.SelectedID,
		})
	}

	errorField := view.ErrorField
	if errorField == "" {
		// Messages from the scoring service only carry the field in their text.
		errorField = render.ErrorField(view.Schema, view.FormError)
	}
	groups := buildGroups(groupSource{
		fields:     view.Fields(),
		values:     view.Values,
		errorField: errorField,
		disabled:   view.Loading,
	})

	submitLabel := messages.Submit
	if view.Loading && len(view.Fields()) > 0 {
		submitLabel = messages.Submitting
	}

	lang, _ := render.ResolveLocale(options.Locale)
	data := map[string]any{
		"lang":         lang,
		"messages":     messages,
		"action":       options.Action,
		"method":       options.FormMethod(),
		"hidden":       render.SortedHiddenFields(options.HiddenFields),
		"model_key":    model.ModelChoiceKey,
		"models":       models,
		"selected":     view.SelectedID,
		"groups":       groups,
		"loading":      view.Loading,
		"can_submit":   view.CanSubmit(),
		"submit_label": submitLabel,
		"form_error":   policy.Sanitize(view.FormError),
		"error_id":     errorID(errorField),
		"show_empty":   len(view.Fields()) == 0 && view.FormError == "" && !view.Loading,
		"theme":        themeCtx,
		"stylesheet":   r.stylesheet,
		"classes":      chromeClasses(),
	}
	if result := buildResult(view, messages); result != nil {
		data["result"] = result
	}
	return data
}

func buildResult(view form.View, messages render.Messages) *resultView {
	if view.Result == nil {
		return nil
	}
	policy := textSanitizer()
	result := view.Result
	return &resultView{
		Class:       string(result.Outcome()),
		Heading:     policy.Sanitize(messages.ResultHeading(view.ResultModelName())),
		Verdict:     policy.Sanitize(result.Verdict),
		Probability: result.ProbabilityPercent(),
		Failed:      result.Failed(),
	}
}

func chromeClasses() map[string]string {
	return map[string]string{
		"form":    string(ClassForm),
		"header":  string(ClassHeader),
		"model":   string(ClassModel),
		"fields":  string(ClassFields),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
		"result":  string(ClassResult),
		"empty":   string(ClassEmpty),
	}
}
