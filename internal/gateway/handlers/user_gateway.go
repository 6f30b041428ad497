package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/upstream"
	"feedmart-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type UserHTTPHandler struct {
	auth   Authenticator
	issuer *utils.TokenIssuer
	logger *zap.Logger
}

func NewUserHTTPHandler(auth Authenticator, issuer *utils.TokenIssuer, logger *zap.Logger) *UserHTTPHandler {
	return &UserHTTPHandler{auth: auth, issuer: issuer, logger: logger}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Role      access.Role `json:"role"`
}

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	user, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			c.JSON(http.StatusUnauthorized, errorResponse("Invalid username or password"))
			return
		}
		h.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse("Login service unavailable"))
		return
	}

	role := access.ParseRole(user.Role)
	if role == "" {
		c.JSON(http.StatusForbidden, errorResponse("This account has no till access"))
		return
	}

	token, exp, err := h.issuer.GenerateToken(user.ID, user.Username, role)
	if err != nil {
		h.logger.Error("token signing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("Could not create session"))
		return
	}

	h.logger.Info("cashier logged in", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	c.JSON(http.StatusOK, successResponse("Login successful", LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      role,
	}))
}
