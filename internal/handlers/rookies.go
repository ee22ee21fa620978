package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rookie"
	"github.com/fantasyprojections/engine/internal/store"
)

// RookiesHandler serves the rookie template lookup and projection build
// routes.
type RookiesHandler struct {
	templates store.RookieTemplateRepository
	rookies   *rookie.Service
}

func NewRookiesHandler(templates store.RookieTemplateRepository, r *rookie.Service) *RookiesHandler {
	return &RookiesHandler{templates: templates, rookies: r}
}

func (h *RookiesHandler) TemplatesByPosition(c *gin.Context) {
	position := models.Position(c.Param("position"))
	templates, err := h.templates.ListByPosition(c.Request.Context(), position)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

type buildRookieRequest struct {
	Season int `json:"season" binding:"required"`
}

func (h *RookiesHandler) Build(c *gin.Context) {
	var req buildRookieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	p, err := h.rookies.Build(c.Request.Context(), c.Param("player_id"), req.Season)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
