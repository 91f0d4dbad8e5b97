package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind is the simplified enum for the semantic type of a model input.
type ValueKind string

const (
	// ValueKindNumeric is the only kind the scoring service exposes today.
	ValueKindNumeric ValueKind = "number"
)

// NormalizeKind maps the wire "type" of a required feature onto a ValueKind.
// Empty and numeric aliases become ValueKindNumeric; anything else is kept
// lower-cased so callers can still see what the service sent.
func NormalizeKind(raw string) ValueKind {
	switch kind := strings.ToLower(strings.TrimSpace(raw)); kind {
	case "", "number", "numeric", "float", "double", "integer", "int":
		return ValueKindNumeric
	default:
		return ValueKind(kind)
	}
}

// UnmarshalJSON normalises the wire type while decoding.
func (k *ValueKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: value kind: %w", err)
	}
	*k = NormalizeKind(raw)
	return nil
}

// ModelDescriptor identifies a model the operator can choose.
type ModelDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
}

// Label returns the display name, falling back to the identifier.
func (d ModelDescriptor) Label() string {
	if name := strings.TrimSpace(d.DisplayName); name != "" {
		return name
	}
	return d.ID
}

// FieldSpec describes one input a model requires.
type FieldSpec struct {
	Name  string    `json:"name"`
	Kind  ValueKind `json:"type"`
	Label string    `json:"label"`
}

// DisplayLabel returns the label shown next to the input.
func (f FieldSpec) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// ModelSchema is the ordered list of inputs a model requires. Error is set
// when the schema could not be fetched; Fields is empty in that case.
type ModelSchema struct {
	ModelID     string      `json:"model_id"`
	DisplayName string      `json:"display_name"`
	Fields      []FieldSpec `json:"required_features"`
	Error       string      `json:"error,omitempty"`
}

// FieldNames returns the field names in schema order.
func (s ModelSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Field looks up a field by name.
func (s ModelSchema) Field(name string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Failed reports whether the schema carries a fetch error.
func (s ModelSchema) Failed() bool {
	return strings.TrimSpace(s.Error) != ""
}

// DefaultRawValue is the textual zero every field starts with.
const DefaultRawValue = "0.0"

// FormValues maps a field name to the raw text the operator typed.
// Invariant: keys are a subset of the active schema's field names, and right
// after a schema load they are exactly that set.
type FormValues map[string]string

// NewFormValues seeds one DefaultRawValue entry per schema field. No field
// name is treated specially.
func NewFormValues(schema ModelSchema) FormValues {
	values := make(FormValues, len(schema.Fields))
	for _, field := range schema.Fields {
		values[field.Name] = DefaultRawValue
	}
	return values
}

// Clone returns an independent copy.
func (v FormValues) Clone() FormValues {
	if v == nil {
		return nil
	}
	out := make(FormValues, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Raw returns the stored text or DefaultRawValue when the field is absent.
func (v FormValues) Raw(name string) string {
	if raw, ok := v[name]; ok {
		return raw
	}
	return DefaultRawValue
}

// ModelChoiceKey is the payload key carrying the selected model id.
const ModelChoiceKey = "model_choice"

// Payload is the strictly typed prediction request. It marshals into a flat
// JSON object with model_choice first and the fields in schema order.
type Payload struct {
	ModelChoice string
	Values      map[string]float64
	Order       []string
}

// Map returns the payload as a generic map, mainly for schema validation.
func (p Payload) Map() map[string]any {
	out := make(map[string]any, len(p.Values)+1)
	out[ModelChoiceKey] = p.ModelChoice
	for key, value := range p.Values {
		out[key] = value
	}
	return out
}

// MarshalJSON writes the flat request body.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, ModelChoiceKey, p.ModelChoice); err != nil {
		return nil, err
	}

	order := p.Order
	if len(order) == 0 {
		order = sortedKeys(p.Values)
	}
	for _, name := range order {
		value, ok := p.Values[name]
		if !ok {
			continue
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, name, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat request body. Field order is not recoverable
// from a JSON object, so Order is left sorted.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Payload{Values: make(map[string]float64, len(raw))}
	for key, value := range raw {
		if key == ModelChoiceKey {
			if err := json.Unmarshal(value, &out.ModelChoice); err != nil {
				return fmt.Errorf("model: %s: %w", ModelChoiceKey, err)
			}
			continue
		}
		var number float64
		if err := json.Unmarshal(value, &number); err != nil {
			return fmt.Errorf("model: payload field %q: %w", key, err)
		}
		out.Values[key] = number
	}
	out.Order = sortedKeys(out.Values)
	*p = out
	return nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("model: payload field %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
