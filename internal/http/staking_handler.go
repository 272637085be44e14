package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/service"
)

// StakingHandler mantiene dependencias para endpoints de staking.
type StakingHandler struct {
	logger      *zap.Logger
	stakingServ *service.StakingService
}

func NewStakingHandler(logger *zap.Logger, stakingServ *service.StakingService) *StakingHandler {
	return &StakingHandler{
		logger:      logger,
		stakingServ: stakingServ,
	}
}

// Stake maneja POST /api/user/staking/stake.
func (h *StakingHandler) Stake(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	stake, err := h.stakingServ.Stake(c.Request.Context(), claims.UserID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		default:
			h.logger.Error("stake failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not stake"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stake": stake})
}

// Unstake maneja POST /api/user/staking/unstake.
func (h *StakingHandler) Unstake(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		StakeID string `json:"stakeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.stakingServ.Unstake(c.Request.Context(), req.StakeID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStakeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "stake not found or already unstaked"})
		case errors.Is(err, service.ErrStakeForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "stake owned by another user"})
		default:
			h.logger.Error("unstake failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unstake"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "unstake successful",
		"unstakedAmount": result.UnstakedAmount,
		"newBalance":     result.NewBalance,
		"totalStaked":    result.TotalStaked,
	})
}

// List maneja GET /api/user/staking.
func (h *StakingHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	stakes, total, err := h.stakingServ.ListStakes(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list stakes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list stakes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakes": stakes, "totalStaked": total})
}
