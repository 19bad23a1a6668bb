package handlers

import (
	"net/http"

	"quizsystem/services"

	"github.com/gin-gonic/gin"
)

type ParticipationHandler struct {
	participationService *services.ParticipationService
}

func NewParticipationHandler(participationService *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participationService: participationService}
}

// Start begins (or resumes) a participation for the user identified by
// the uni query parameter.
func (h *ParticipationHandler) Start(c *gin.Context) {
	quizID, ok := parseID(c, "id")
	if !ok {
		return
	}

	uni := c.Query("uni")
	if uni == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uni is required"})
		return
	}

	result, err := h.participationService.Start(uni, quizID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ParticipationHandler) Submit(c *gin.Context) {
	participationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.participationService.Submit(participationID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ParticipationHandler) Complete(c *gin.Context) {
	participationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.participationService.Complete(participationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ParticipationHandler) Status(c *gin.Context) {
	quizID, ok := parseID(c, "quizId")
	if !ok {
		return
	}

	status, err := h.participationService.Status(c.Param("uni"), quizID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ParticipationHandler) Delete(c *gin.Context) {
	participationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.participationService.Delete(participationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "participation deleted"})
}
