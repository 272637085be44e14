package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/repository"
)

// AdminHandler mantiene dependencias para endpoints administrativos.
type AdminHandler struct {
	logger  *zap.Logger
	users   repository.UserRepository
	imports repository.ImportRepository
}

func NewAdminHandler(logger *zap.Logger, users repository.UserRepository, imports repository.ImportRepository) *AdminHandler {
	return &AdminHandler{
		logger:  logger,
		users:   users,
		imports: imports,
	}
}

// ListUsers maneja GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreditCashback maneja POST /api/admin/users/:id/cashback.
func (h *AdminHandler) CreditCashback(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	user, err := h.users.CreditCashback(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("credit cashback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not credit cashback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListImports maneja GET /api/admin/imports.
func (h *AdminHandler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	imports, err := h.imports.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list imports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list imports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imports": imports})
}
