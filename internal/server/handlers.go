package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/model"
	"github.com/goliatone/go-fraudform/pkg/payload"
	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/validation"
)

const maxValidateBody = 1 << 20

// localeKey carries the chrome language across the form round trips.
const localeKey = "lang"

func (s *Server) newManager() *form.Manager {
	return form.New(s.service, s.service,
		form.WithCatalog(s.service),
		form.WithPreferredModel(s.preferred),
		form.WithLogger(s.logger),
	)
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.requestTimeout)
}

// handleForm renders the form for ?model_choice=<id>, falling back to the
// preferred or first catalog entry.
func (s *Server) handleForm(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	manager := s.newManager()
	defer manager.Close()

	_, defaultID := manager.LoadCatalog(ctx)
	id := firstNonEmpty(c.Query(model.ModelChoiceKey), c.Query("model"), defaultID)
	if err := wait(ctx, manager.SelectModel(ctx, id)); err != nil {
		s.logger.Warn("schema fetch interrupted", zap.String("model_id", id), zap.Error(err))
	}
	s.render(c, http.StatusOK, manager.Snapshot())
}

// handleSubmit replays the posted form into a fresh session and submits it.
func (s *Server) handleSubmit(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	manager := s.newManager()
	defer manager.Close()

	manager.LoadCatalog(ctx)
	id := strings.TrimSpace(c.PostForm(model.ModelChoiceKey))
	if err := wait(ctx, manager.SelectModel(ctx, id)); err != nil {
		s.logger.Warn("schema fetch interrupted", zap.String("model_id", id), zap.Error(err))
	}

	view := manager.Snapshot()
	for _, field := range view.Fields() {
		if raw, ok := c.GetPostForm(field.Name); ok {
			if err := manager.SetFieldValue(field.Name, raw); err != nil {
				s.logger.Debug("ignoring posted value", zap.String("field", field.Name), zap.Error(err))
			}
		}
	}

	status := http.StatusOK
	if id == "" || len(view.Fields()) > 0 {
		if _, err := manager.Submit(ctx); err != nil {
			var invalid *payload.ValidationError
			var precondition *payload.PreconditionError
			switch {
			case errors.As(err, &invalid), errors.As(err, &precondition):
				status = http.StatusUnprocessableEntity
			default:
				s.logger.Warn("prediction not completed", zap.String("model_id", id), zap.Error(err))
			}
		}
	}
	s.render(c, status, manager.Snapshot())
}

func (s *Server) handleModels(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.service.ListModels(ctx))
}

func (s *Server) handleSchema(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	schema, err := s.service.GetSchema(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, schema)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// handleOpenAPI serves the request contract of one model as YAML, or JSON
// with ?format=json.
func (s *Server) handleOpenAPI(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	schema, err := s.service.GetSchema(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": schema.Error})
		return
	}
	doc := payload.Document(schema)
	if strings.EqualFold(c.Query("format"), "json") {
		c.JSON(http.StatusOK, doc)
		return
	}
	out, err := payload.EncodeYAML(doc)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}

// handleValidate checks a request body from elsewhere against the contract
// of one model without submitting it.
func (s *Server) handleValidate(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxValidateBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	schema, err := s.service.GetSchema(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": schema.Error})
		return
	}

	result := validation.ValidatePayload(ctx, schema, raw)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (s *Server) render(c *gin.Context, status int, view form.View) {
	locale := s.requestLocale(c)
	opts := render.RenderOptions{
		Action:       "/",
		Method:       http.MethodPost,
		Locale:       locale,
		Theme:        s.theme,
		HiddenFields: render.MergeHiddenFields(nil, render.Hidden(localeKey, locale)),
	}
	out, err := s.renderer.Render(c.Request.Context(), view, opts)
	if err != nil {
		s.logger.Error("render failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, s.renderer.ContentType(), out)
}

// requestLocale picks the chrome language from ?lang= or the posted lang
// field. Unsupported values fall back to the configured locale.
func (s *Server) requestLocale(c *gin.Context) string {
	requested := c.Query(localeKey)
	if c.Request.Method == http.MethodPost {
		requested = firstNonEmpty(c.PostForm(localeKey), requested)
	}
	if key, ok := render.ResolveLocale(requested); ok {
		return key
	}
	if key, ok := render.ResolveLocale(s.locale); ok {
		return key
	}
	return render.DefaultLocale
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
