package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/model"
)

// ListModels fetches the models the scoring service exposes. It never fails:
// any transport, status, or decode problem is logged and an empty slice is
// returned, which callers treat as "no model selectable yet".
func (c *Client) ListModels(ctx context.Context) []model.ModelDescriptor {
	data, err := c.do(ctx, "models_list", http.MethodGet, c.endpoint(PathModelsList, nil), nil)
	if err != nil {
		c.logger.Warn("model catalog unavailable", zap.Error(err))
		return []model.ModelDescriptor{}
	}

	var decoded []model.ModelDescriptor
	if err := json.Unmarshal(data, &decoded); err != nil {
		c.logger.Warn("model catalog undecodable", zap.Error(err))
		return []model.ModelDescriptor{}
	}

	out := make([]model.ModelDescriptor, 0, len(decoded))
	for _, descriptor := range decoded {
		descriptor.ID = strings.TrimSpace(descriptor.ID)
		if descriptor.ID == "" {
			continue
		}
		out = append(out, descriptor)
	}
	return out
}
