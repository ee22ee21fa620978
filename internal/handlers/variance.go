package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/variance"
)

// VarianceHandler serves the per-projection variance and range routes.
type VarianceHandler struct {
	variance          *variance.Service
	defaultConfidence float64
}

func NewVarianceHandler(v *variance.Service, defaultConfidence float64) *VarianceHandler {
	return &VarianceHandler{variance: v, defaultConfidence: defaultConfidence}
}

func (h *VarianceHandler) Calculate(c *gin.Context) {
	result, err := h.variance.Calculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Range returns the low/median/high product, optionally materializing the
// range as two new scenarios when ?scenarios=true.
func (h *VarianceHandler) Range(c *gin.Context) {
	confidence := h.defaultConfidence
	if v := c.Query("confidence"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "confidence must be a number")
			return
		}
		confidence = parsed
	}
	materialize := c.Query("scenarios") == "true"

	result, err := h.variance.Range(c.Request.Context(), c.Param("id"), confidence, materialize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
