// Package fraudform is the top-level entry point for embedding the fraud
// prediction form: it wires a scoring client, a form session, and the
// built-in HTML renderer behind a few helpers.
package fraudform

import (
	"context"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/vanilla"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

// RenderOptions aliases render.RenderOptions for callers of RenderHTML.
type RenderOptions = render.RenderOptions

// View aliases form.View.
type View = form.View

// NewClient returns a scoring client for the service at baseURL.
func NewClient(baseURL string, options ...scoring.Option) *scoring.Client {
	return scoring.New(append([]scoring.Option{scoring.WithBaseURL(baseURL)}, options...)...)
}

// NewSession returns a form session backed by client for catalog, schemas,
// and predictions.
func NewSession(client *scoring.Client, options ...form.Option) *form.Manager {
	return form.New(client, client, append([]form.Option{form.WithCatalog(client)}, options...)...)
}

// RenderHTML loads the catalog, selects modelID (or the default model when
// empty), waits for its schema, and renders the form page. A schema failure
// is rendered as the page error, not returned.
func RenderHTML(ctx context.Context, client *scoring.Client, modelID string, options RenderOptions) ([]byte, error) {
	session := NewSession(client)
	defer session.Close()

	var done <-chan struct{}
	if modelID == "" {
		done = session.Bootstrap(ctx)
	} else {
		session.LoadCatalog(ctx)
		done = session.SelectModel(ctx, modelID)
	}
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	renderer, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, session.Snapshot(), options)
}
