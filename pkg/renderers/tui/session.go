package tui

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/render"
)

// Run drives an interactive prediction session: pick a model, fill in its
// fields, submit, print the outcome, and optionally start over. It returns
// nil when the operator declines another round.
func (r *Renderer) Run(ctx context.Context, manager *form.Manager) error {
	if manager == nil {
		return errors.New("tui: form manager is required")
	}
	messages := render.MessagesFor(r.locale)
	opts := render.RenderOptions{Locale: r.locale}

	if err := wait(ctx, manager.Bootstrap(ctx)); err != nil {
		return err
	}

	for {
		view := manager.Snapshot()
		if len(view.Models) == 0 {
			if err := r.driver.Info(ctx, messages.NoModels); err != nil {
				return err
			}
			return ErrNoModels
		}

		view, err := r.chooseModel(ctx, manager, view, messages)
		if err != nil {
			return err
		}
		if view.FormError != "" || len(view.Fields()) == 0 {
			msg := view.FormError
			if msg == "" {
				msg = messages.Empty
			}
			if err := r.driver.Info(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := r.fillFields(ctx, manager, view); err != nil {
			return err
		}

		send, err := r.driver.Confirm(ctx, ConfirmConfig{Message: messages.ConfirmSubmit, Default: true})
		if err != nil {
			return err
		}
		if send {
			if err := r.submit(ctx, manager, opts); err != nil {
				return err
			}
		}

		again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: messages.ConfirmRestart, Default: false})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func (r *Renderer) chooseModel(ctx context.Context, manager *form.Manager, view form.View, messages render.Messages) (form.View, error) {
	options := make([]string, 0, len(view.Models))
	defaultIndex := 0
	for i, descriptor := range view.Models {
		options = append(options, descriptor.Label())
		if descriptor.ID == view.SelectedID {
			defaultIndex = i
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      messages.ModelLabel,
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return form.View{}, err
	}
	if idx < 0 || idx >= len(view.Models) {
		idx = defaultIndex
	}

	id := view.Models[idx].ID
	if id != view.SelectedID || view.FormError != "" || len(view.Fields()) == 0 {
		r.logger.Debug("selecting model", zap.String("model_id", id))
		if err := wait(ctx, manager.SelectModel(ctx, id)); err != nil {
			return form.View{}, err
		}
	}
	return manager.Snapshot(), nil
}

func (r *Renderer) fillFields(ctx context.Context, manager *form.Manager, view form.View) error {
	for _, field := range view.Fields() {
		raw, err := r.promptNumber(ctx, field, view.Value(field.Name))
		if err != nil {
			return err
		}
		if err := manager.SetFieldValue(field.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) submit(ctx context.Context, manager *form.Manager, opts render.RenderOptions) error {
	_, err := manager.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrBusy), errors.Is(err, form.ErrSuperseded):
		return r.driver.Info(ctx, err.Error())
	case err != nil && manager.Snapshot().FormError == "":
		return err
	}

	out, renderErr := r.results.Render(ctx, manager.Snapshot(), opts)
	if renderErr != nil {
		return renderErr
	}
	return r.driver.Info(ctx, string(out))
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
