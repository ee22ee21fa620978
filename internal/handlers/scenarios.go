package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/scenario"
)

// ScenariosHandler serves the scenario CRUD/clone/compare routes.
type ScenariosHandler struct {
	scenarios *scenario.Service
}

func NewScenariosHandler(s *scenario.Service) *ScenariosHandler {
	return &ScenariosHandler{scenarios: s}
}

type createScenarioRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description"`
	Season         int     `json:"season" binding:"required"`
	BaseScenarioID *string `json:"base_scenario_id"`
}

func (h *ScenariosHandler) Create(c *gin.Context) {
	var req createScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	sc, err := h.scenarios.Create(c.Request.Context(), req.Name, req.Description, req.Season, req.BaseScenarioID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (h *ScenariosHandler) List(c *gin.Context) {
	var seasonPtr *int
	if v := c.Query("season"); v != "" {
		season, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "season must be an integer")
			return
		}
		seasonPtr = &season
	}
	scenarios, err := h.scenarios.List(c.Request.Context(), seasonPtr)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

func (h *ScenariosHandler) Get(c *gin.Context) {
	sc, err := h.scenarios.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

type cloneScenarioRequest struct {
	NewName     string  `json:"new_name" binding:"required"`
	Description *string `json:"description"`
}

func (h *ScenariosHandler) Clone(c *gin.Context) {
	var req cloneScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	sc, err := h.scenarios.Clone(c.Request.Context(), c.Param("id"), req.NewName, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (h *ScenariosHandler) Delete(c *gin.Context) {
	if err := h.scenarios.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type compareRequest struct {
	ScenarioIDs []string `json:"scenario_ids" binding:"required"`
	Position    *string  `json:"position"`
}

func (h *ScenariosHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "%v", err)
		return
	}
	var posPtr *models.Position
	if req.Position != nil {
		p := models.Position(*req.Position)
		posPtr = &p
	}
	result, err := h.scenarios.Compare(c.Request.Context(), req.ScenarioIDs, posPtr)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
