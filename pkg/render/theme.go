package render

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeContext is the template-facing view of a theme.RendererConfig.
type ThemeContext struct {
	Name         string
	Variant      string
	Partials     map[string]string
	Tokens       map[string]string
	CSSVars      map[string]string
	CSSVarsStyle string
	assetURL     func(string) string
}

// BuildThemeContext copies cfg so templates never see caller-owned maps.
// CSS variables whose name or value could break out of a style block are
// dropped.
func BuildThemeContext(cfg *theme.RendererConfig) ThemeContext {
	if cfg == nil {
		return ThemeContext{}
	}
	ctx := ThemeContext{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: copyStringMap(cfg.Partials),
		Tokens:   copyStringMap(cfg.Tokens),
		CSSVars:  safeCSSVars(cfg.CSSVars),
		assetURL: cfg.AssetURL,
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

// Partial returns the template override registered for name, or fallback.
func (t ThemeContext) Partial(name, fallback string) string {
	if value := strings.TrimSpace(t.Partials[name]); value != "" {
		return value
	}
	return fallback
}

// AssetURL resolves a theme asset key; empty when no resolver is configured.
func (t ThemeContext) AssetURL(key string) string {
	if t.assetURL == nil || key == "" {
		return ""
	}
	return t.assetURL(key)
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func safeCSSVars(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, "--") || strings.ContainsAny(key, "<>{};:") {
			continue
		}
		if strings.ContainsAny(value, "<>{};") {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
