package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(context.Context, cqrs.CreateUserCommand) (*models.User, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	ShowUserProfile(context.Context, cqrs.ShowUserProfileQuery) (*models.UserView, error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
	log      *zap.Logger
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{commands: commands, queries: queries, log: log}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.CreateUser(c.Request.Context(), cqrs.CreateUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrEmailAlreadyExists):
			middleware.RespondWithError(c, http.StatusConflict, "Email already registered")
		case errors.Is(err, xerrors.ErrPersistence):
			h.log.Error("user store unavailable", zap.Error(err))
			middleware.RespondWithError(c, http.StatusServiceUnavailable, "User store unavailable, try again")
		default:
			h.log.Error("failed to create user", zap.Error(err))
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	c.JSON(http.StatusCreated, models.UserToView(user))
}

func (h *UserHandler) ShowProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.ShowUserProfile(c.Request.Context(), cqrs.ShowUserProfileQuery{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, xerrors.ErrPersistence):
			h.log.Error("user store unavailable", zap.Error(err))
			middleware.RespondWithError(c, http.StatusServiceUnavailable, "User store unavailable, try again")
		default:
			h.log.Error("failed to load profile", zap.Error(err))
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	c.JSON(http.StatusOK, view)
}
