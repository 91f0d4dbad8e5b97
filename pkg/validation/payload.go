// Package validation checks prediction request bodies that did not come from
// the form builder (files, other tools) against the contract of a model and
// reports every problem at once.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/payload"
)

// Issue is one validation problem, located by JSON pointer and field name.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of ValidatePayload.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValidatePayload decodes raw as JSON and checks it against the request
// schema of the model: model_choice must name the model, every schema field
// must be present as a number, and nothing else may appear.
func ValidatePayload(_ context.Context, schema model.ModelSchema, raw []byte) Result {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return Result{Issues: []Issue{{Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	err := payload.RequestSchema(schema).VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return Result{Valid: true}
	}

	issues := collect(nil, err)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Field < issues[j].Field
	})
	return Result{Issues: issues}
}

func collect(out []Issue, err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			out = collect(out, inner)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return append(out, issueFromSchemaError(schemaErr))
	}
	return append(out, Issue{Message: strings.TrimSpace(err.Error())})
}

// propertyReason matches object-level reasons that name a property without
// putting it on the error path.
var propertyReason = regexp.MustCompile(`^property ("(?:[^"\\]|\\.)*") is `)

func issueFromSchemaError(err *openapi3.SchemaError) Issue {
	pointer := err.JSONPointer()
	issue := Issue{Message: strings.TrimSpace(err.Reason)}
	if issue.Message == "" {
		issue.Message = strings.TrimSpace(err.Error())
	}
	if len(pointer) == 0 {
		if m := propertyReason.FindStringSubmatch(issue.Message); m != nil {
			if name, uerr := strconv.Unquote(m[1]); uerr == nil {
				pointer = []string{name}
			}
		}
	}
	if len(pointer) == 0 {
		return issue
	}
	escaped := make([]string, len(pointer))
	for i, segment := range pointer {
		segment = strings.ReplaceAll(segment, "~", "~0")
		escaped[i] = strings.ReplaceAll(segment, "/", "~1")
	}
	issue.Path = "#/" + strings.Join(escaped, "/")
	issue.Field = strings.Join(pointer, ".")
	return issue
}
