package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/override"
)

// OverridesHandler serves the manual stat override routes.
type OverridesHandler struct {
	overrides *override.Service
}

func NewOverridesHandler(o *override.Service) *OverridesHandler {
	return &OverridesHandler{overrides: o}
}

type createOverrideRequest struct {
	PlayerID     string  `json:"player_id" binding:"required"`
	ProjectionID string  `json:"projection_id" binding:"required"`
	StatName     string  `json:"stat_name" binding:"required"`
	ManualValue  float64 `json:"manual_value" binding:"required"`
	Notes        *string `json:"notes"`
}

func (h *OverridesHandler) Create(c *gin.Context) {
	var req createOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	ov, err := h.overrides.Create(c.Request.Context(), req.PlayerID, req.ProjectionID, req.StatName, req.ManualValue, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ov)
}

func (h *OverridesHandler) ListByPlayer(c *gin.Context) {
	ovs, err := h.overrides.ListByPlayer(c.Request.Context(), c.Param("player_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ovs)
}

func (h *OverridesHandler) ListByProjection(c *gin.Context) {
	ovs, err := h.overrides.ListByProjection(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ovs)
}

func (h *OverridesHandler) Delete(c *gin.Context) {
	if err := h.overrides.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type batchOverrideRequest struct {
	PlayerIDs []string `json:"player_ids" binding:"required"`
	StatName  string   `json:"stat_name" binding:"required"`
	Season    int      `json:"season" binding:"required"`
	Notes     *string  `json:"notes"`

	Absolute *float64             `json:"absolute"`
	Method   override.BatchMethod `json:"method"`
	Amount   float64              `json:"amount"`
}

// Batch applies one stat change across many players. Batch operations are
// never atomic across elements — this always returns 200 with a
// per-player {success, error} envelope.
func (h *OverridesHandler) Batch(c *gin.Context) {
	var req batchOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	value := override.BatchValue{Absolute: req.Absolute, Method: req.Method, Amount: req.Amount}
	results := h.overrides.Batch(c.Request.Context(), req.PlayerIDs, req.StatName, value, req.Season, req.Notes)
	c.JSON(http.StatusOK, results)
}
