package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taic-market/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
	}
}

// Challenge maneja POST /api/auth/challenge.
func (h *AuthHandler) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	challenge, err := h.authServ.RequestChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWalletAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
			return
		}
		h.logger.Error("challenge request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create challenge"})
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// Verify maneja POST /api/auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authServ.VerifyWallet(c.Request.Context(), req.WalletAddress, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWalletAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrChallengeNotRequested):
			c.JSON(http.StatusForbidden, gin.H{"error": "no challenge pending"})
		case errors.Is(err, service.ErrSignatureInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
		default:
			h.logger.Error("wallet verify failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify signature"})
		}
		return
	}

	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authServ.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		}
		return
	}

	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authServ.LoginPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

// Refresh maneja POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tokens, err := h.jwtServ.RefreshPair(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Me maneja GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.authServ.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
