// Package testsupport provides an in-process scoring service for tests that
// exercise the client, the CLI, or the web front end end to end.
package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/scoring"
)

// DefaultPrediction is the body the backend answers predictions with unless
// SetPrediction replaces it.
const DefaultPrediction = `{"prediction":"Frode","isFraud":true,"fraudProbability":0.9134}`

// Backend is a fake scoring service speaking the same wire format as the real
// one. Unknown model ids answer 404 with {"error":"Model not found"}.
type Backend struct {
	URL string

	mu       sync.Mutex
	models   []model.ModelDescriptor
	schemas  map[string]model.ModelSchema
	status   int
	reply    string
	payloads []map[string]any
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithModels sets the catalog answer.
func WithModels(models ...model.ModelDescriptor) BackendOption {
	return func(b *Backend) {
		b.models = append([]model.ModelDescriptor(nil), models...)
	}
}

// WithSchema serves fields for the model id. The schema answer omits the
// model id so clients fall back to the one they asked for.
func WithSchema(id string, fields ...model.FieldSpec) BackendOption {
	return func(b *Backend) {
		b.schemas[id] = model.ModelSchema{Fields: append([]model.FieldSpec{}, fields...)}
	}
}

// NewBackend starts the fake service and stops it on test cleanup.
func NewBackend(t testing.TB, options ...BackendOption) *Backend {
	t.Helper()

	b := &Backend{
		schemas: map[string]model.ModelSchema{},
		status:  http.StatusOK,
		reply:   DefaultPrediction,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// Client returns a scoring client pointed at the backend.
func (b *Backend) Client(options ...scoring.Option) *scoring.Client {
	return scoring.New(append([]scoring.Option{scoring.WithBaseURL(b.URL)}, options...)...)
}

// SetPrediction replaces the status and body of prediction answers.
func (b *Backend) SetPrediction(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.reply = body
}

// Payloads returns the decoded prediction bodies received so far.
func (b *Backend) Payloads() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.payloads...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.URL.Path {
	case scoring.PathModelsList:
		models := b.models
		if models == nil {
			models = []model.ModelDescriptor{}
		}
		_ = json.NewEncoder(w).Encode(models)
	case scoring.PathModelsParams:
		schema, ok := b.schemas[r.URL.Query().Get("model_id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Model not found"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(schema)
	case scoring.PathPredict:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid JSON"}`)
			return
		}
		b.payloads = append(b.payloads, body)
		w.WriteHeader(b.status)
		_, _ = io.WriteString(w, b.reply)
	default:
		http.NotFound(w, r)
	}
}
