package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/transcript"
)

type TranscriptHandler struct{}

func NewTranscriptHandler() *TranscriptHandler {
	return &TranscriptHandler{}
}

type bestAlternativeRequest struct {
	Alternatives []domain.Alternative `json:"alternatives"`
}

// BestAlternative returns the words of the most confident alternative
func (h *TranscriptHandler) BestAlternative(c *gin.Context) {
	var req bestAlternativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"words": transcript.PickBestAlternative(req.Alternatives)})
}
