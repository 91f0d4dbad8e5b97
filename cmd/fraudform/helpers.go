package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/render"
)

func messagesFor(a *app) render.Messages {
	return render.MessagesFor(a.cfg.Locale)
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadModel selects id on a fresh session and waits for its schema. A schema
// failure is returned as an error carrying the operator-facing message.
func loadModel(ctx context.Context, manager *form.Manager, id string) (form.View, error) {
	manager.LoadCatalog(ctx)
	if err := wait(ctx, manager.SelectModel(ctx, id)); err != nil {
		return form.View{}, err
	}
	view := manager.Snapshot()
	if view.FormError != "" {
		return view, fmt.Errorf("%s", view.FormError)
	}
	return view, nil
}

// parseAssignments splits repeated Name=value flags, keeping the order.
func parseAssignments(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected Name=value", pair)
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out, nil
}
