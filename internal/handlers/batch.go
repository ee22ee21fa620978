package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/adjust"
	"github.com/fantasyprojections/engine/internal/baseline"
	"github.com/fantasyprojections/engine/internal/scenario"
)

// BatchHandler serves the batch endpoints: create many projections, adjust
// many projections, create many scenarios from templates. Each element is
// its own transaction and failures never abort the rest of the batch.
type BatchHandler struct {
	baseline  *baseline.Builder
	adjust    *adjust.Service
	scenarios *scenario.Service
}

func NewBatchHandler(b *baseline.Builder, a *adjust.Service, s *scenario.Service) *BatchHandler {
	return &BatchHandler{baseline: b, adjust: a, scenarios: s}
}

type batchElementResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type createProjectionsRequest struct {
	Items []struct {
		PlayerID string `json:"player_id" binding:"required"`
		Season   int    `json:"season" binding:"required"`
	} `json:"items" binding:"required"`
}

func (h *BatchHandler) CreateProjections(c *gin.Context) {
	var req createProjectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	ctx := c.Request.Context()
	results := make([]batchElementResult, len(req.Items))
	for i, item := range req.Items {
		p, err := h.baseline.Build(ctx, item.PlayerID, item.Season)
		if err != nil {
			results[i] = batchElementResult{Error: err.Error()}
			continue
		}
		results[i] = batchElementResult{Success: true, ID: p.ProjectionID}
	}
	c.JSON(http.StatusOK, results)
}

type adjustProjectionsRequest struct {
	Items []struct {
		ProjectionID string                    `json:"projection_id" binding:"required"`
		Factors      map[adjust.Factor]float64 `json:"factors" binding:"required"`
	} `json:"items" binding:"required"`
}

func (h *BatchHandler) AdjustProjections(c *gin.Context) {
	var req adjustProjectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	ctx := c.Request.Context()
	results := make([]batchElementResult, len(req.Items))
	for i, item := range req.Items {
		p, err := h.adjust.Apply(ctx, item.ProjectionID, item.Factors)
		if err != nil {
			results[i] = batchElementResult{Error: err.Error()}
			continue
		}
		results[i] = batchElementResult{Success: true, ID: p.ProjectionID}
	}
	c.JSON(http.StatusOK, results)
}

type scenarioTemplate struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description"`
	Season         int     `json:"season" binding:"required"`
	BaseScenarioID *string `json:"base_scenario_id"`
}

type createScenariosRequest struct {
	Items []scenarioTemplate `json:"items" binding:"required"`
}

// CreateScenarios creates many scenarios, each from a template object. A
// template naming a base_scenario_id clones that scenario; one with no
// base_scenario_id creates an empty scenario.
func (h *BatchHandler) CreateScenarios(c *gin.Context) {
	var req createScenariosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	ctx := c.Request.Context()
	results := make([]batchElementResult, len(req.Items))
	for i, item := range req.Items {
		if item.BaseScenarioID != nil {
			cloned, err := h.scenarios.Clone(ctx, *item.BaseScenarioID, item.Name, item.Description)
			if err != nil {
				results[i] = batchElementResult{Error: err.Error()}
				continue
			}
			results[i] = batchElementResult{Success: true, ID: cloned.ScenarioID}
			continue
		}
		created, err := h.scenarios.Create(ctx, item.Name, item.Description, item.Season, nil)
		if err != nil {
			results[i] = batchElementResult{Error: err.Error()}
			continue
		}
		results[i] = batchElementResult{Success: true, ID: created.ScenarioID}
	}
	c.JSON(http.StatusOK, results)
}
