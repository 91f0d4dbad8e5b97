package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// GenericPredictFailure replaces transport details in user-facing results.
const GenericPredictFailure = "Errore API"

// Predict submits a payload and always returns a result. Transport failures
// and non-2xx responses become a result with Verdict "Errore" and Error set;
// a structured error body from the service is passed through unchanged.
func (c *Client) Predict(ctx context.Context, payload model.Payload) model.PredictionResult {
	data, err := c.do(ctx, "predict", http.MethodPost, c.endpoint(PathPredict, nil), payload)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) {
			if result, ok := decodeStructuredResult(statusErr.Body); ok {
				c.logger.Info("prediction rejected",
					zap.String("model_id", payload.ModelChoice),
					zap.Int("status", statusErr.StatusCode),
					zap.String("reason", result.Error),
				)
				return result
			}
		}
		c.logger.Warn("prediction request failed",
			zap.String("model_id", payload.ModelChoice),
			zap.Error(err),
		)
		return model.ErrorResult(GenericPredictFailure)
	}

	var result model.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("prediction response undecodable",
			zap.String("model_id", payload.ModelChoice),
			zap.Error(err),
		)
		return model.ErrorResult(GenericPredictFailure)
	}
	if result.Failed() && strings.TrimSpace(result.Verdict) == "" {
		result.Verdict = model.ErrorVerdict
	}
	result.FraudProbability = clampProbability(result.FraudProbability)
	return result
}

// decodeStructuredResult accepts bodies carrying at least an error or a
// prediction member.
func decodeStructuredResult(body []byte) (model.PredictionResult, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return model.PredictionResult{}, false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return model.PredictionResult{}, false
	}
	_, hasError := probe["error"]
	_, hasPrediction := probe["prediction"]
	if !hasError && !hasPrediction {
		return model.PredictionResult{}, false
	}

	var result model.PredictionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return model.PredictionResult{}, false
	}
	if !result.Failed() {
		result.Error = GenericPredictFailure
	}
	if strings.TrimSpace(result.Verdict) == "" {
		result.Verdict = model.ErrorVerdict
	}
	result.FraudProbability = clampProbability(result.FraudProbability)
	return result, true
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
