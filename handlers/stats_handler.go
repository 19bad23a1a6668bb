package handlers

import (
	"net/http"
	"strconv"

	"quizsystem/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.statsService.Dashboard())
}

func (h *StatsHandler) Quiz(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	stats, err := h.statsService.Quiz(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) ListParticipations(c *gin.Context) {
	completedOnly := c.Query("completed_only") == "true"

	var quizID uint
	if raw := c.Query("quiz_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz_id"})
			return
		}
		quizID = uint(parsed)
	}

	c.JSON(http.StatusOK, h.statsService.ListParticipations(completedOnly, quizID))
}

func (h *StatsHandler) QuizResponses(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	responses, err := h.statsService.QuizResponses(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (h *StatsHandler) ParticipationResponses(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	responses, err := h.statsService.ParticipationResponses(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}
