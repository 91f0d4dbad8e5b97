// Package payload converts raw form values into the typed prediction request
// for the active model schema, and describes that request as an OpenAPI
// schema.
package payload

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// PreconditionError reports a build attempted before a model and its schema
// were available. It is raised before any value is parsed.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "payload: " + e.Reason
}

var (
	// ErrNoModelSelected is returned when the model id is empty.
	ErrNoModelSelected = &PreconditionError{Reason: "no model selected"}
	// ErrEmptySchema is returned when the schema has no fields.
	ErrEmptySchema = &PreconditionError{Reason: "model schema has no fields"}
	// ErrReservedField is returned when a schema field reuses the model
	// selector key.
	ErrReservedField = &PreconditionError{Reason: "model schema declares " + model.ModelChoiceKey + " as a field"}
)

// ValidationError names the first field whose raw value is not a finite
// number.
type ValidationError struct {
	FieldName string
	Label     string
	Raw       string
	Err       error
}

func (e *ValidationError) Error() string {
	label := e.Label
	if strings.TrimSpace(label) == "" {
		label = e.FieldName
	}
	return fmt.Sprintf("Valore non valido per %s. Deve essere un numero.", label)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	errNotFinite  = errors.New("value is not finite")
	errNotDecimal = errors.New("value is not a decimal number")
)

// Build walks the schema fields in order, parses each raw value (missing
// values default to "0.0"), and stops at the first value that is not a finite
// number. On success the payload holds model_choice plus exactly one entry per
// schema field.
func Build(values model.FormValues, schema model.ModelSchema, modelID string) (model.Payload, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return model.Payload{}, ErrNoModelSelected
	}
	if len(schema.Fields) == 0 {
		return model.Payload{}, ErrEmptySchema
	}

	for _, field := range schema.Fields {
		if field.Name == model.ModelChoiceKey {
			return model.Payload{}, ErrReservedField
		}
	}

	out := model.Payload{
		ModelChoice: modelID,
		Values:      make(map[string]float64, len(schema.Fields)),
		Order:       make([]string, 0, len(schema.Fields)),
	}
	for _, field := range schema.Fields {
		raw := values.Raw(field.Name)
		number, err := ParseNumber(raw)
		if err != nil {
			return model.Payload{}, &ValidationError{
				FieldName: field.Name,
				Label:     field.DisplayLabel(),
				Raw:       raw,
				Err:       err,
			}
		}
		out.Values[field.Name] = number
		out.Order = append(out.Order, field.Name)
	}
	return out, nil
}

// ParseNumber parses raw text as a finite float64 in plain decimal notation,
// optionally with an exponent. Surrounding whitespace is ignored. Hex floats,
// digit separators, NaN and infinities are rejected.
func ParseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.IndexFunc(raw, notDecimal) >= 0 {
		return 0, errNotDecimal
	}
	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, errNotFinite
	}
	return number, nil
}

func notDecimal(r rune) bool {
	return !strings.ContainsRune("0123456789.eE+-", r)
}
