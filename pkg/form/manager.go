// Package form owns the state of one operator session: the catalog of models,
// the selected model and its schema, the raw field values, the loading flag,
// the single error slot, and the last prediction result.
//
// Schema fetches run asynchronously. Every selection bumps a generation
// counter and cancels the previous fetch; a fetch result is applied only if
// its generation is still current, so a late response for a model that is no
// longer selected never touches the form.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/payload"
)

// SchemaSource fetches the input schema of a model.
type SchemaSource interface {
	GetSchema(ctx context.Context, modelID string) (model.ModelSchema, error)
}

// Predictor submits a payload. Implementations never fail; errors are carried
// in the result.
type Predictor interface {
	Predict(ctx context.Context, p model.Payload) model.PredictionResult
}

// Catalog lists the selectable models.
type Catalog interface {
	ListModels(ctx context.Context) []model.ModelDescriptor
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCatalog enables LoadCatalog and Bootstrap.
func WithCatalog(catalog Catalog) Option {
	return func(m *Manager) {
		m.catalog = catalog
	}
}

// WithPreferredModel sets the model Bootstrap selects when the catalog offers
// it. Otherwise the first catalog entry wins.
func WithPreferredModel(id string) Option {
	return func(m *Manager) {
		m.preferred = strings.TrimSpace(id)
	}
}

// Manager is the single source of truth for what fields exist and what the
// operator typed. It is safe for concurrent use.
type Manager struct {
	schemas   SchemaSource
	predictor Predictor
	catalog   Catalog
	logger    *zap.Logger
	preferred string

	mu             sync.Mutex
	models         []model.ModelDescriptor
	selected       string
	generation     uint64
	cancelFetch    context.CancelFunc
	schemaLoading  bool
	predicting     bool
	schema         model.ModelSchema
	values         model.FormValues
	formError      string
	formErrorField string
	result         *model.PredictionResult
}

// New constructs a Manager.
func New(schemas SchemaSource, predictor Predictor, options ...Option) *Manager {
	m := &Manager{
		schemas:   schemas,
		predictor: predictor,
		logger:    zap.NewNop(),
		values:    model.FormValues{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// LoadCatalog fetches the model list, stores it, and returns it together with
// the default selection (preferred model if listed, else the first entry, else
// empty).
func (m *Manager) LoadCatalog(ctx context.Context) ([]model.ModelDescriptor, string) {
	if m.catalog == nil {
		return nil, ""
	}
	models := m.catalog.ListModels(ctx)

	m.mu.Lock()
	m.models = append([]model.ModelDescriptor(nil), models...)
	m.mu.Unlock()

	if len(models) == 0 {
		m.logger.Info("no models available")
		return models, ""
	}
	defaultID := models[0].ID
	for _, descriptor := range models {
		if m.preferred != "" && descriptor.ID == m.preferred {
			defaultID = descriptor.ID
			break
		}
	}
	return models, defaultID
}

// Bootstrap loads the catalog and selects the default model. The returned
// channel closes once the default schema fetch settles, or immediately when
// no model is available.
func (m *Manager) Bootstrap(ctx context.Context) <-chan struct{} {
	_, defaultID := m.LoadCatalog(ctx)
	if defaultID == "" {
		done := make(chan struct{})
		close(done)
		return done
	}
	return m.SelectModel(ctx, defaultID)
}

// SelectModel makes id the active model and starts exactly one schema fetch
// for it. The previous fetch, if any, is cancelled and its result ignored.
// The form error and last result are cleared. Selecting "" clears the form
// without fetching. The returned channel closes when this fetch settles.
func (m *Manager) SelectModel(ctx context.Context, id string) <-chan struct{} {
	id = strings.TrimSpace(id)
	done := make(chan struct{})

	m.mu.Lock()
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
	m.generation++
	gen := m.generation
	if id != m.selected {
		m.schema = model.ModelSchema{}
		m.values = model.FormValues{}
	}
	m.selected = id
	m.setErrorLocked("", "")
	m.result = nil

	if id == "" || m.schemas == nil {
		m.schemaLoading = false
		m.mu.Unlock()
		close(done)
		return done
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	m.cancelFetch = cancel
	m.schemaLoading = true
	m.mu.Unlock()

	m.logger.Debug("fetching model schema", zap.String("model_id", id), zap.Uint64("generation", gen))

	go func() {
		defer close(done)
		defer cancel()
		schema, err := m.schemas.GetSchema(fetchCtx, id)
		m.settleFetch(gen, id, schema, err)
	}()
	return done
}

func (m *Manager) settleFetch(gen uint64, id string, schema model.ModelSchema, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		m.logger.Debug("discarding stale schema",
			zap.String("model_id", id),
			zap.Uint64("generation", gen),
			zap.Uint64("current", m.generation),
		)
		return
	}
	m.cancelFetch = nil
	m.schemaLoading = false

	if schema.ModelID == "" {
		schema.ModelID = id
	}
	if err != nil && !schema.Failed() {
		schema = model.ModelSchema{ModelID: id, Error: err.Error()}
	}
	m.applySchemaLocked(schema)
}

// OnSchemaLoaded applies a schema for the selected model: fields are replaced
// wholesale and every value is reset to "0.0". A schema carrying an error
// clears the form and sets the form error. A schema for a model that is not
// selected is ignored; the return value reports whether it was applied.
func (m *Manager) OnSchemaLoaded(schema model.ModelSchema) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if schema.ModelID != m.selected || m.selected == "" {
		return false
	}
	m.applySchemaLocked(schema)
	return true
}

func (m *Manager) applySchemaLocked(schema model.ModelSchema) {
	if schema.Failed() {
		m.schema = model.ModelSchema{ModelID: schema.ModelID, DisplayName: schema.DisplayName}
		m.values = model.FormValues{}
		m.setErrorLocked(fmt.Sprintf(msgSchemaFailure, schema.ModelID, schema.Error), "")
		m.logger.Warn("model schema unavailable",
			zap.String("model_id", schema.ModelID),
			zap.String("reason", schema.Error),
		)
		return
	}

	schema.Fields = append([]model.FieldSpec(nil), schema.Fields...)
	m.schema = schema
	m.values = model.NewFormValues(schema)
	m.setErrorLocked("", "")
	m.logger.Debug("model schema applied",
		zap.String("model_id", schema.ModelID),
		zap.Int("fields", len(schema.Fields)),
	)
}

// setErrorLocked fills the single error slot. field names the input the
// message is about, when known.
func (m *Manager) setErrorLocked(message, field string) {
	m.formError = message
	m.formErrorField = field
}

// SetFieldValue stores raw text for a field the active schema declares. The
// text is kept as typed; parsing happens on Submit.
func (m *Manager) SetFieldValue(name, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[name]; !ok {
		return &UnknownFieldError{Name: name}
	}
	m.values[name] = raw
	return nil
}

// Submit validates the form, builds the payload, and sends it. It refuses to
// run while anything is loading. Validation and precondition failures abort
// before any network call and set the form error; a failed prediction is
// returned as a result and its reason also fills the form error.
func (m *Manager) Submit(ctx context.Context) (model.PredictionResult, error) {
	m.mu.Lock()
	if m.loadingLocked() {
		m.mu.Unlock()
		return model.PredictionResult{}, ErrBusy
	}
	m.setErrorLocked("", "")
	m.result = nil

	p, err := payload.Build(m.values, m.schema, m.selected)
	if err != nil {
		var invalid *payload.ValidationError
		switch {
		case errors.Is(err, payload.ErrNoModelSelected), errors.Is(err, payload.ErrEmptySchema):
			m.setErrorLocked(MsgSelectModel, "")
		case errors.As(err, &invalid):
			m.setErrorLocked(err.Error(), invalid.FieldName)
		default:
			m.setErrorLocked(err.Error(), "")
		}
		m.mu.Unlock()
		return model.PredictionResult{}, err
	}
	if m.predictor == nil {
		err := errors.New("form: predictor is not configured")
		m.setErrorLocked(err.Error(), "")
		m.mu.Unlock()
		return model.PredictionResult{}, err
	}
	m.predicting = true
	gen := m.generation
	m.mu.Unlock()

	result := m.predict(ctx, p)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.predicting = false
	if gen != m.generation {
		return result, ErrSuperseded
	}
	m.result = &result
	if result.Failed() {
		m.setErrorLocked(result.Error, "")
	}
	m.logger.Info("prediction completed",
		zap.String("model_id", p.ModelChoice),
		zap.String("outcome", string(result.Outcome())),
		zap.Float64("fraud_probability", result.FraudProbability),
	)
	return result, nil
}

// predict shields the loading flag from a panicking predictor.
func (m *Manager) predict(ctx context.Context, p model.Payload) (result model.PredictionResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("predictor panicked", zap.Any("panic", r))
			result = model.ErrorResult(fmt.Sprint(r))
		}
	}()
	return m.predictor.Predict(ctx, p)
}

// Loading reports whether a schema fetch or a prediction is outstanding.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadingLocked()
}

func (m *Manager) loadingLocked() bool {
	return m.schemaLoading || m.predicting
}

// Close cancels any in-flight schema fetch.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// Snapshot returns an immutable copy of the session state for renderers.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := View{
		Models:     append([]model.ModelDescriptor(nil), m.models...),
		SelectedID: m.selected,
		Schema:     m.schema,
		Values:     m.values.Clone(),
		Loading:    m.loadingLocked(),
		FormError:  m.formError,
		ErrorField: m.formErrorField,
	}
	view.Schema.Fields = append([]model.FieldSpec(nil), m.schema.Fields...)
	if m.result != nil {
		result := *m.result
		view.Result = &result
	}
	return view
}
