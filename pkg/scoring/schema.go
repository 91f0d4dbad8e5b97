package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// DefaultSchemaFailure is the reason reported when the service gives no
// structured explanation for a failed schema fetch.
const DefaultSchemaFailure = "Failed to fetch model params"

// ErrModelIDRequired is returned by GetSchema for an empty model id.
var ErrModelIDRequired = errors.New("scoring: model id is required")

// SchemaFetchError reports a schema that could not be retrieved.
type SchemaFetchError struct {
	ModelID string
	Reason  string
	Err     error
}

func (e *SchemaFetchError) Error() string {
	return fmt.Sprintf("scoring: fetch schema for %q: %s", e.ModelID, e.Reason)
}

func (e *SchemaFetchError) Unwrap() error {
	return e.Err
}

// GetSchema fetches the ordered input fields of a model. On failure the
// returned schema is still well formed (no fields, Error populated) and the
// error is a *SchemaFetchError, so transport and application failures can be
// handled through the same Error field. Safe for concurrent use.
func (c *Client) GetSchema(ctx context.Context, modelID string) (model.ModelSchema, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return failedSchema("", ErrModelIDRequired.Error()), ErrModelIDRequired
	}

	query := url.Values{"model_id": []string{modelID}}
	data, err := c.do(ctx, "models_params", http.MethodGet, c.endpoint(PathModelsParams, query), nil)
	if err != nil {
		reason := DefaultSchemaFailure
		var statusErr *statusError
		if errors.As(err, &statusErr) {
			if msg := structuredError(statusErr.Body); msg != "" {
				reason = msg
			}
		}
		return c.schemaFailure(modelID, reason, err)
	}

	var schema model.ModelSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return c.schemaFailure(modelID, DefaultSchemaFailure, fmt.Errorf("decode: %w", err))
	}
	if schema.Failed() {
		return c.schemaFailure(modelID, schema.Error, nil)
	}
	if schema.ModelID == "" {
		schema.ModelID = modelID
	}
	if err := checkFields(schema.Fields); err != nil {
		return c.schemaFailure(modelID, err.Error(), err)
	}
	if schema.Fields == nil {
		schema.Fields = []model.FieldSpec{}
	}
	return schema, nil
}

func (c *Client) schemaFailure(modelID, reason string, cause error) (model.ModelSchema, error) {
	c.logger.Warn("model schema unavailable",
		zap.String("model_id", modelID),
		zap.String("reason", reason),
		zap.Error(cause),
	)
	return failedSchema(modelID, reason), &SchemaFetchError{
		ModelID: modelID,
		Reason:  reason,
		Err:     cause,
	}
}

func failedSchema(modelID, reason string) model.ModelSchema {
	return model.ModelSchema{
		ModelID: modelID,
		Fields:  []model.FieldSpec{},
		Error:   reason,
	}
}

func checkFields(fields []model.FieldSpec) error {
	seen := make(map[string]struct{}, len(fields))
	for i, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("required feature %d has no name", i)
		}
		if field.Name == model.ModelChoiceKey {
			return fmt.Errorf("required feature %q collides with the model selector", field.Name)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("required feature %q listed twice", field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

// structuredError extracts the "error" member of a JSON error body.
func structuredError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}
