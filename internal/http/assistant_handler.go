package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taic-market/internal/service"
)

// AssistantHandler mantiene dependencias para el asistente de compras.
type AssistantHandler struct {
	logger        *zap.Logger
	assistantServ *service.AssistantService
}

func NewAssistantHandler(logger *zap.Logger, assistantServ *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		logger:        logger,
		assistantServ: assistantServ,
	}
}

// Query maneja POST /api/assistant/query.
func (h *AssistantHandler) Query(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.assistantServ.Query(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		h.logger.Error("assistant query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not answer query"})
		return
	}

	c.JSON(http.StatusOK, result)
}
