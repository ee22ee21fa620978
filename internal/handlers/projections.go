package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/adjust"
	"github.com/fantasyprojections/engine/internal/baseline"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
	"github.com/fantasyprojections/engine/internal/teamadjust"
)

// ProjectionsHandler serves the projection CRUD, adjust, and team-adjust
// routes, grounded on the teacher's handler shape.
type ProjectionsHandler struct {
	baseline    *baseline.Builder
	adjust      *adjust.Service
	teamAdjust  *teamadjust.Service
	projections store.ProjectionRepository
	teamStats   store.TeamStatRepository
	players     store.PlayerRepository
}

func NewProjectionsHandler(b *baseline.Builder, a *adjust.Service, ta *teamadjust.Service, projections store.ProjectionRepository, teamStats store.TeamStatRepository, players store.PlayerRepository) *ProjectionsHandler {
	return &ProjectionsHandler{baseline: b, adjust: a, teamAdjust: ta, projections: projections, teamStats: teamStats, players: players}
}

type createProjectionRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Season   int    `json:"season" binding:"required"`
}

// Create builds a baseline (player, season, scenario=NULL) projection.
func (h *ProjectionsHandler) Create(c *gin.Context) {
	var req createProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	p, err := h.baseline.Build(c.Request.Context(), req.PlayerID, req.Season)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectionsHandler) Get(c *gin.Context) {
	p, err := h.projections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectionsHandler) ListByPlayer(c *gin.Context) {
	ps, err := h.projections.ListByPlayer(c.Request.Context(), c.Param("player_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// ListByScenario reads the filters {position, team, season, half_ppr_min,
// half_ppr_max} from query params. scenario_id="baseline" (or an empty
// path segment) requests the global baseline via a nil pointer.
func (h *ProjectionsHandler) ListByScenario(c *gin.Context) {
	scenarioID := c.Param("scenario_id")
	var scenarioPtr *string
	if scenarioID != "" && scenarioID != "baseline" {
		scenarioPtr = &scenarioID
	}

	season, err := strconv.Atoi(c.Query("season"))
	if err != nil {
		badRequest(c, "season query param is required and must be an integer")
		return
	}

	filter := store.ProjectionFilter{Team: c.Query("team")}
	if pos := c.Query("position"); pos != "" {
		p := models.Position(pos)
		filter.Position = &p
	}
	if v := c.Query("half_ppr_min"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "half_ppr_min must be a number")
			return
		}
		filter.HalfPPRMin = &min
	}
	if v := c.Query("half_ppr_max"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "half_ppr_max must be a number")
			return
		}
		filter.HalfPPRMax = &max
	}

	ps, err := h.projections.ListByScenario(c.Request.Context(), scenarioPtr, season, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

type adjustRequest struct {
	Factors map[adjust.Factor]float64 `json:"factors" binding:"required"`
}

// Adjust applies a bounded multiplicative factor map to one projection.
func (h *ProjectionsHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	p, err := h.adjust.Apply(c.Request.Context(), c.Param("id"), req.Factors)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type teamAdjustRequest struct {
	Mode       string  `json:"mode" binding:"required,oneof=direct scope"`
	Season     int     `json:"season" binding:"required"`
	ScenarioID *string `json:"scenario_id"`

	// Direct mode
	Original *models.TeamStat `json:"original"`
	New      *models.TeamStat `json:"new"`

	// Scope mode
	Bundle *teamadjust.Bundle `json:"bundle"`
}

// TeamAdjust runs Direct or Scope mode against every affected projection
// for a team.
func (h *ProjectionsHandler) TeamAdjust(c *gin.Context) {
	team := c.Param("team")
	var req teamAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}

	ctx := c.Request.Context()
	switch req.Mode {
	case "direct":
		if req.Original == nil || req.New == nil {
			badRequest(c, "direct mode requires both original and new team stats")
			return
		}
		targets, err := h.projections.ListByScenario(ctx, req.ScenarioID, req.Season, store.ProjectionFilter{Team: team})
		if err != nil {
			fail(c, err)
			return
		}
		positions := map[string]models.Position{}
		for _, p := range targets {
			player, err := h.players.Get(ctx, p.PlayerID)
			if err != nil {
				fail(c, err)
				return
			}
			positions[p.ProjectionID] = player.Position
		}
		updated, err := h.teamAdjust.Direct(ctx, req.Original, req.New, targets, positions)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	case "scope":
		if req.Bundle == nil {
			badRequest(c, "scope mode requires a bundle")
			return
		}
		updated, err := h.teamAdjust.Scope(ctx, team, req.Season, req.ScenarioID, *req.Bundle)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
