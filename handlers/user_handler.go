package handlers

import (
	"net/http"

	"quizsystem/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService          *services.UserService
	participationService *services.ParticipationService
}

func NewUserHandler(userService *services.UserService, participationService *services.ParticipationService) *UserHandler {
	return &UserHandler{
		userService:          userService,
		participationService: participationService,
	}
}

// Create registers a user by external identifier. Re-registering an
// existing identifier returns the existing user.
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.CreateOrGet(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetByUni(c *gin.Context) {
	user, err := h.userService.GetByUni(c.Param("uni"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *UserHandler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.userService.Search(c.Query("q")))
}

// Participations lists one user's attempts across all quizzes.
func (h *UserHandler) Participations(c *gin.Context) {
	summaries, err := h.participationService.ListByUser(c.Param("uni"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
