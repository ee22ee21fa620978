package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/reconcile"
)

// ReconcileHandler serves the fill-player reconciliation route.
type ReconcileHandler struct {
	reconcile *reconcile.Service
}

func NewReconcileHandler(r *reconcile.Service) *ReconcileHandler {
	return &ReconcileHandler{reconcile: r}
}

type reconcileRequest struct {
	Season     int     `json:"season" binding:"required"`
	ScenarioID *string `json:"scenario_id"`
}

func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	projections, err := h.reconcile.Reconcile(c.Request.Context(), c.Param("team"), req.Season, req.ScenarioID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projections)
}
