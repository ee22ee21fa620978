package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/export"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
)

// ExportHandler serves the flat projection export route.
type ExportHandler struct {
	export *export.Service
}

func NewExportHandler(e *export.Service) *ExportHandler {
	return &ExportHandler{export: e}
}

// Export streams projections for a scenario/season as CSV or JSON, selected
// by ?format=csv|json (csv is the default).
func (h *ExportHandler) Export(c *gin.Context) {
	season, err := strconv.Atoi(c.Query("season"))
	if err != nil {
		badRequest(c, "season query parameter is required and must be an integer")
		return
	}

	var scenarioID *string
	if v := c.Query("scenario_id"); v != "" {
		scenarioID = &v
	}

	var filter store.ProjectionFilter
	if v := c.Query("position"); v != "" {
		pos := models.Position(v)
		filter.Position = &pos
	}
	if v := c.Query("team"); v != "" {
		filter.Team = v
	}

	records, err := h.export.Build(c.Request.Context(), scenarioID, season, filter)
	if err != nil {
		fail(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "json":
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "attachment; filename=projections.json")
		if err := export.WriteJSON(c.Writer, records); err != nil {
			fail(c, err)
		}
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=projections.csv")
		if err := export.WriteCSV(c.Writer, records); err != nil {
			fail(c, err)
		}
	default:
		badRequest(c, "format must be csv or json")
	}
}
