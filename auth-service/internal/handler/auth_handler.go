package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/ledger/auth-service/internal/query"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*query.LoginResult, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles login and token refresh. No command service needed.
type AuthHandler struct {
	queries AuthQuerier
	log     *zap.Logger
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{queries: queries, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrInvalidCredentials):
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, xerrors.ErrPersistence):
			h.log.Error("user store unavailable", zap.Error(err))
			middleware.RespondWithError(c, http.StatusServiceUnavailable, "User store unavailable, try again")
		default:
			h.log.Error("login failed", zap.Error(err))
			middleware.RespondWithError(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidToken) {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		h.log.Error("token refresh failed", zap.Error(err))
		middleware.RespondWithError(c, http.StatusInternalServerError, "Token refresh failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
