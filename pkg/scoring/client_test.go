package scoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

func newServer(t *testing.T, handler http.HandlerFunc) *scoring.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return scoring.New(scoring.WithBaseURL(srv.URL), scoring.WithHTTPClient(srv.Client()))
}

func TestListModels(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != scoring.PathModelsList {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":"rf","name":"Random Forest"},{"id":"","name":"nameless"},{"id":"xgb","name":"XGBoost"}]`)
	})

	got := client.ListModels(context.Background())
	want := []model.ModelDescriptor{
		{ID: "rf", DisplayName: "Random Forest"},
		{ID: "xgb", DisplayName: "XGBoost"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestListModels_FailureDegradesToEmpty(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"garbage body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "not json")
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			client := newServer(t, handler)
			got := client.ListModels(context.Background())
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil catalog, got %#v", got)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := scoring.New(scoring.WithBaseURL(srv.URL))
		if got := client.ListModels(context.Background()); len(got) != 0 {
			t.Fatalf("expected empty catalog, got %#v", got)
		}
	})
}

func TestGetSchema(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("model_id"); got != "rf" {
			t.Errorf("model_id = %q", got)
		}
		_, _ = io.WriteString(w, `{
			"model_id": "rf",
			"display_name": "Random Forest",
			"required_features": [
				{"name": "Time", "type": "number", "label": "Time (secondi)"},
				{"name": "Amount", "type": "number", "label": "Amount"},
				{"name": "V1", "type": "number", "label": "V1"}
			]
		}`)
	})

	got, err := client.GetSchema(context.Background(), "rf")
	if err != nil {
		t.Fatalf("get schema: %v", err)
	}
	want := model.ModelSchema{
		ModelID:     "rf",
		DisplayName: "Random Forest",
		Fields: []model.FieldSpec{
			{Name: "Time", Kind: model.ValueKindNumeric, Label: "Time (secondi)"},
			{Name: "Amount", Kind: model.ValueKindNumeric, Label: "Amount"},
			{Name: "V1", Kind: model.ValueKindNumeric, Label: "V1"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSchema_Idempotent(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"model_id":"m1","required_features":[{"name":"B"},{"name":"A"},{"name":"C"}]}`)
	})

	var (
		wg      sync.WaitGroup
		results [4][]string
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			schema, err := client.GetSchema(context.Background(), "m1")
			if err != nil {
				t.Errorf("get schema: %v", err)
				return
			}
			results[i] = schema.FieldNames()
		}(i)
	}
	wg.Wait()

	want := []string{"B", "A", "C"}
	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("call %d field order mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestGetSchema_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantReason string
	}{
		{
			name: "structured 400",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":"ID modello non valido o mancante."}`)
			},
			wantReason: "ID modello non valido o mancante.",
		},
		{
			name: "opaque 502",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			wantReason: scoring.DefaultSchemaFailure,
		},
		{
			name: "2xx with error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"model_id":"rf","required_features":[],"error":"model offline"}`)
			},
			wantReason: "model offline",
		},
		{
			name: "duplicate field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"model_id":"rf","required_features":[{"name":"V1"},{"name":"V1"}]}`)
			},
			wantReason: `required feature "V1" listed twice`,
		},
		{
			name: "reserved field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"model_id":"rf","required_features":[{"name":"model_choice"},{"name":"Amount"}]}`)
			},
			wantReason: `required feature "model_choice" collides with the model selector`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newServer(t, tc.handler)
			schema, err := client.GetSchema(context.Background(), "rf")

			var fetchErr *scoring.SchemaFetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected SchemaFetchError, got %v", err)
			}
			if fetchErr.ModelID != "rf" || fetchErr.Reason != tc.wantReason {
				t.Fatalf("unexpected fetch error %+v", fetchErr)
			}

			want := model.ModelSchema{ModelID: "rf", Fields: []model.FieldSpec{}, Error: tc.wantReason}
			if diff := cmp.Diff(want, schema); diff != "" {
				t.Fatalf("schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetSchema_RequiresModelID(t *testing.T) {
	client := scoring.New()
	schema, err := client.GetSchema(context.Background(), "  ")
	if !errors.Is(err, scoring.ErrModelIDRequired) {
		t.Fatalf("expected ErrModelIDRequired, got %v", err)
	}
	if !schema.Failed() || len(schema.Fields) != 0 {
		t.Fatalf("expected failed empty schema, got %+v", schema)
	}
}

func TestPredict(t *testing.T) {
	var received map[string]any
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != scoring.PathPredict {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"prediction":"Frode","isFraud":true,"fraudProbability":0.91,"modelUsed":"Random Forest"}`)
	})

	payload := model.Payload{
		ModelChoice: "rf",
		Values:      map[string]float64{"Time": 0, "Amount": 100, "V1": -1.2},
		Order:       []string{"Time", "Amount", "V1"},
	}
	got := client.Predict(context.Background(), payload)

	wantBody := map[string]any{"model_choice": "rf", "Time": 0.0, "Amount": 100.0, "V1": -1.2}
	if diff := cmp.Diff(wantBody, received); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
	want := model.PredictionResult{
		Verdict:          "Frode",
		IsFraud:          true,
		FraudProbability: 0.91,
		ModelUsed:        "Random Forest",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestPredict_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    model.PredictionResult
	}{
		{
			name: "structured error passes through",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":"Feature richiesta dal modello mancante: 'V2'"}`)
			},
			want: model.PredictionResult{
				Verdict: model.ErrorVerdict,
				Error:   "Feature richiesta dal modello mancante: 'V2'",
			},
		},
		{
			name: "opaque error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "<html>oops</html>", http.StatusInternalServerError)
			},
			want: model.ErrorResult(scoring.GenericPredictFailure),
		},
		{
			name: "undecodable success",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"prediction":`)
			},
			want: model.ErrorResult(scoring.GenericPredictFailure),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newServer(t, tc.handler)
			got := client.Predict(context.Background(), model.Payload{ModelChoice: "rf"})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPredict_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := scoring.New(scoring.WithBaseURL(srv.URL))

	got := client.Predict(context.Background(), model.Payload{ModelChoice: "rf"})
	if got.Verdict != "Errore" || got.IsFraud || got.FraudProbability != 0 || got.Error == "" {
		t.Fatalf("unexpected transport failure result %+v", got)
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := scoring.NewMetrics(reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	client := scoring.New(
		scoring.WithBaseURL(srv.URL),
		scoring.WithHTTPClient(srv.Client()),
		scoring.WithMetrics(metrics),
	)
	client.ListModels(context.Background())
	client.ListModels(context.Background())

	count, err := testutil.GatherAndCount(reg, "fraudform_scoring_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single endpoint/outcome series, got %d", count)
	}

	if _, err := scoring.NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
