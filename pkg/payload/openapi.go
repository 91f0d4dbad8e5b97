package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

// OpenAPIVersion is the document version emitted by Document.
const OpenAPIVersion = "3.0.3"

// RequestSchema describes the prediction body for a model: model_choice pinned
// to the model id plus one required number per schema field. Unknown members
// are rejected.
func RequestSchema(schema model.ModelSchema) *openapi3.Schema {
	choice := openapi3.NewStringSchema()
	choice.Enum = []any{schema.ModelID}

	out := openapi3.NewObjectSchema().WithProperty(model.ModelChoiceKey, choice)
	if schema.DisplayName != "" {
		out.Title = schema.DisplayName
	}

	required := []string{model.ModelChoiceKey}
	for _, field := range schema.Fields {
		prop := openapi3.NewFloat64Schema()
		prop.Title = field.DisplayLabel()
		out.WithProperty(field.Name, prop)
		required = append(required, field.Name)
	}
	out.Required = required
	closed := false
	out.AdditionalProperties = openapi3.AdditionalProperties{Has: &closed}
	return out
}

// Validate checks an assembled payload against RequestSchema. Build already
// guarantees the shape; Validate exists for payloads that arrive from
// elsewhere (files, other tools).
func Validate(_ context.Context, schema model.ModelSchema, p model.Payload) error {
	if err := RequestSchema(schema).VisitJSON(p.Map()); err != nil {
		return fmt.Errorf("payload: does not match schema for %q: %w", schema.ModelID, err)
	}
	return nil
}

// Document wraps RequestSchema into a minimal OpenAPI description of the
// prediction endpoint.
func Document(schema model.ModelSchema) *openapi3.T {
	op := openapi3.NewOperation()
	op.OperationID = "predict_" + schema.ModelID
	op.Summary = "Score a transaction with " + model.ModelDescriptor{ID: schema.ModelID, DisplayName: schema.DisplayName}.Label()
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(RequestSchema(schema)),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Prediction verdict").
				WithJSONSchema(resultSchema()),
		}),
	)

	return &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:   "fraudform scoring contract",
			Version: schema.ModelID,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(scoring.PathPredict, &openapi3.PathItem{Post: op}),
		),
	}
}

func resultSchema() *openapi3.Schema {
	probability := openapi3.NewFloat64Schema().WithMin(0).WithMax(1)
	out := openapi3.NewObjectSchema().
		WithProperty("prediction", openapi3.NewStringSchema()).
		WithProperty("isFraud", openapi3.NewBoolSchema()).
		WithProperty("fraudProbability", probability).
		WithProperty("modelUsed", openapi3.NewStringSchema()).
		WithProperty("error", openapi3.NewStringSchema())
	out.Required = []string{"prediction", "isFraud", "fraudProbability"}
	return out
}

// EncodeYAML renders any JSON-marshalable value (such as an OpenAPI document)
// as block-style YAML, keeping the member order of the JSON encoding.
func EncodeYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("payload: encode json: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("payload: decode json as yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("payload: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	if node == nil {
		return
	}
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
