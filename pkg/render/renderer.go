package render

import (
	"context"

	"github.com/goliatone/go-fraudform/pkg/form"
)

// Renderer converts a form snapshot into a byte representation (HTML, plain
// text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
}
