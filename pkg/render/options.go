package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the form session.
type RenderOptions struct {
	// Action is the URL the form posts to. Empty keeps the current page.
	Action string
	// Method defaults to POST. Anything other than GET is sent as POST.
	Method string
	// Locale selects the chrome message catalog ("it" by default).
	Locale string
	// Theme feeds partial overrides and CSS variables into HTML renderers.
	Theme *theme.RendererConfig
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
}

// FormMethod normalises Method into a verb browsers can submit.
func (o RenderOptions) FormMethod() string {
	if strings.EqualFold(strings.TrimSpace(o.Method), "get") {
		return "get"
	}
	return "post"
}

// Messages returns the chrome catalog for the configured locale.
func (o RenderOptions) Messages() Messages {
	return MessagesFor(o.Locale)
}
