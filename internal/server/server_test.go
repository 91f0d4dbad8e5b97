package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/testsupport"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mu       sync.Mutex
	models   []model.ModelDescriptor
	schemas  map[string]model.ModelSchema
	result   model.PredictionResult
	payloads []model.Payload
}

func (m *mockService) ListModels(context.Context) []model.ModelDescriptor {
	return m.models
}

func (m *mockService) GetSchema(_ context.Context, id string) (model.ModelSchema, error) {
	schema, ok := m.schemas[id]
	if !ok {
		return model.ModelSchema{ModelID: id, Error: "Model not found"}, errors.New("model not found")
	}
	return schema, nil
}

func (m *mockService) Predict(_ context.Context, p model.Payload) model.PredictionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
	return m.result
}

func newMockService() *mockService {
	return &mockService{
		models: []model.ModelDescriptor{
			{ID: "lr", DisplayName: "Logistic Regression"},
			{ID: "random_forest_tuned_pipeline", DisplayName: "Random Forest (Tuned)"},
		},
		schemas: map[string]model.ModelSchema{
			"lr": {ModelID: "lr", Fields: []model.FieldSpec{{Name: "Amount"}}},
			"random_forest_tuned_pipeline": {
				ModelID: "random_forest_tuned_pipeline",
				Fields:  []model.FieldSpec{{Name: "Time"}, {Name: "Amount"}, {Name: "V1"}},
			},
		},
		result: model.PredictionResult{Verdict: "Frode", IsFraud: true, FraudProbability: 0.9134},
	}
}

func newTestServer(t *testing.T, svc Service, opts ...Option) *Server {
	t.Helper()
	base := []Option{WithPreferredModel("random_forest_tuned_pipeline")}
	s, err := New(svc, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetForm_DefaultsToPreferredModel(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, `<option value="random_forest_tuned_pipeline" selected>`)
	assert.Contains(t, body, `name="Time" value="0.0"`)
	assert.Contains(t, body, `name="V1" value="0.0"`)
}

func TestGetForm_SelectsRequestedModel(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/?model_choice=lr", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `<option value="lr" selected>`)
	assert.Contains(t, body, `name="Amount"`)
	assert.NotContains(t, body, `name="V1"`)
}

func TestGetForm_SchemaFailure(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/?model_choice=ghost", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Errore nel caricare i parametri per ghost: Model not found")
}

func TestGetForm_LocaleFromQuery(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/?lang=en-GB", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `<html lang="en">`)
	assert.Contains(t, body, `<input type="hidden" name="lang" value="en">`)
	assert.Contains(t, body, ">Get Prediction</button>")
}

func TestGetForm_UnknownLocaleFallsBack(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/?lang=fr", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `<input type="hidden" name="lang" value="it">`)
	assert.Contains(t, body, ">Ottieni Predizione</button>")
	assert.NotContains(t, body, `value="fr"`)
}

func TestPostForm_KeepsPostedLocale(t *testing.T) {
	svc := newMockService()
	s := newTestServer(t, svc)

	w := do(t, s, postForm(url.Values{
		"model_choice": {"lr"},
		"Amount":       {"10"},
		"lang":         {"en"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Prediction Result (Model: Logistic Regression)")
	assert.Contains(t, body, `<input type="hidden" name="lang" value="en">`)
}

func TestPostForm_Submits(t *testing.T) {
	svc := newMockService()
	s := newTestServer(t, svc)

	w := do(t, s, postForm(url.Values{
		"model_choice": {"random_forest_tuned_pipeline"},
		"Time":         {"100"},
		"Amount":       {"49.99"},
		"V1":           {"-1.2"},
		"Unknown":      {"1"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, svc.payloads, 1)
	assert.Equal(t, map[string]float64{"Time": 100, "Amount": 49.99, "V1": -1.2}, svc.payloads[0].Values)

	body := w.Body.String()
	assert.Contains(t, body, `data-outcome="fraud"`)
	assert.Contains(t, body, "91.34%")
	assert.Contains(t, body, "Risultato Predizione (Modello: Random Forest (Tuned))")
}

func TestPostForm_ValidationError(t *testing.T) {
	svc := newMockService()
	s := newTestServer(t, svc)

	w := do(t, s, postForm(url.Values{
		"model_choice": {"random_forest_tuned_pipeline"},
		"Amount":       {"abc"},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, svc.payloads)
	assert.Contains(t, w.Body.String(), "Valore non valido per Amount. Deve essere un numero.")
	assert.Contains(t, w.Body.String(), `value="abc"`)
}

func TestPostForm_NoModel(t *testing.T) {
	svc := newMockService()
	s := newTestServer(t, svc)

	w := do(t, s, postForm(url.Values{}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Seleziona un modello e attendi il caricamento dei suoi parametri.")
}

func TestAPI_SchemaAndOpenAPI(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/models/lr/schema", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var schema model.ModelSchema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schema))
	assert.Equal(t, []string{"Amount"}, schema.FieldNames())

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/models/ghost/schema", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/models/lr/openapi", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/models/lr/openapi?format=json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"openapi":"3.0.3"`)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"lr"`)
}

func TestAPI_Validate(t *testing.T) {
	svc := newMockService()
	s := newTestServer(t, svc)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, s, req)
	}

	w := post("/api/models/lr/validate", `{"model_choice":"lr","Amount":12.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = post("/api/models/lr/validate", `{"model_choice":"lr","Amount":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var result struct {
		Valid  bool
		Issues []struct{ Field string }
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Amount", result.Issues[0].Field)

	w = post("/api/models/missing/validate", `{}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, svc.payloads)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestServer(t, newMockService(), WithMetrics(reg, reg))

	do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	count := testutil.ToFloat64(s.metrics.requests.WithLabelValues(http.MethodGet, "/healthz", "2xx"))
	assert.Equal(t, float64(2), count)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fraudform_http_requests_total")
}

func TestAssets(t *testing.T) {
	s := newTestServer(t, newMockService())

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/assets/fraudform.css", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".v-feature-group")
}

// The scoring client satisfies Service end to end.
func TestWithScoringClient(t *testing.T) {
	backend := testsupport.NewBackend(t,
		testsupport.WithModels(model.ModelDescriptor{ID: "rf", DisplayName: "Random Forest"}),
		testsupport.WithSchema("rf", model.FieldSpec{Name: "Amount", Kind: model.ValueKindNumeric}),
	)
	backend.SetPrediction(http.StatusOK, `{"prediction":"Legittima","isFraud":false,"fraudProbability":0.0013}`)

	s := newTestServer(t, backend.Client())

	w := do(t, s, postForm(url.Values{"model_choice": {"rf"}, "Amount": {"12.5"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-outcome="legitimate"`)
	assert.Contains(t, w.Body.String(), "0.13%")

	payloads := backend.Payloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, map[string]any{"model_choice": "rf", "Amount": 12.5}, payloads[0])
}
