package form

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Submit while a schema fetch or a previous
	// prediction is outstanding.
	ErrBusy = errors.New("form: request already in progress")
	// ErrSuperseded is returned by Submit when the model selection changed
	// while the prediction was in flight; the result is not kept.
	ErrSuperseded = errors.New("form: model selection changed during submission")
)

// Messages shown to the operator.
const (
	MsgSelectModel   = "Seleziona un modello e attendi il caricamento dei suoi parametri."
	msgSchemaFailure = "Errore nel caricare i parametri per %s: %s"
)

// UnknownFieldError reports a value written to a field the active schema does
// not declare.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("form: unknown field %q", e.Name)
}
