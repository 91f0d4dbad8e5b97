package payload_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/payload"
)

func TestValidateAgainstRequestSchema(t *testing.T) {
	schema := schemaOf("rf", "Time", "Amount", "V1")
	built, err := payload.Build(model.FormValues{"Time": "0", "Amount": "100", "V1": "-1.2"}, schema, "rf")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := payload.Validate(context.Background(), schema, built); err != nil {
		t.Fatalf("validate built payload: %v", err)
	}

	missing := built
	missing.Values = map[string]float64{"Time": 0, "Amount": 100}
	if err := payload.Validate(context.Background(), schema, missing); err == nil {
		t.Fatalf("expected missing field to fail validation")
	}

	extra := built
	extra.Values = map[string]float64{"Time": 0, "Amount": 100, "V1": 1, "V2": 2}
	if err := payload.Validate(context.Background(), schema, extra); err == nil {
		t.Fatalf("expected unknown field to fail validation")
	}

	wrongModel := built
	wrongModel.ModelChoice = "xgb"
	if err := payload.Validate(context.Background(), schema, wrongModel); err == nil {
		t.Fatalf("expected model mismatch to fail validation")
	}
}

func TestDocumentYAML(t *testing.T) {
	schema := schemaOf("rf", "Time", "Amount")
	schema.DisplayName = "Random Forest"

	out, err := payload.EncodeYAML(payload.Document(schema))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"openapi: 3.0.3",
		"/api/predict:",
		"operationId: predict_rf",
		"model_choice:",
		"Amount:",
		"- Time",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in document:\n%s", want, text)
		}
	}
}
