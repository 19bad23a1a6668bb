package handlers

import (
	"net/http"

	"quizsystem/services"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	uploadService *services.UploadService
	qrService     *services.QRService
}

func NewMediaHandler(uploadService *services.UploadService, qrService *services.QRService) *MediaHandler {
	return &MediaHandler{
		uploadService: uploadService,
		qrService:     qrService,
	}
}

func (h *MediaHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	result, err := h.uploadService.SaveImage(fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MediaHandler) GenerateQR(c *gin.Context) {
	quizID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.qrService.Generate(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
