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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatementCommander defines the write-side operations used by StatementHandler.
type StatementCommander interface {
	CreateStatement(context.Context, cqrs.CreateStatementCommand) (*models.Statement, error)
	CreateTransfer(context.Context, cqrs.CreateTransferCommand) ([]models.Statement, error)
}

// StatementQuerier defines the read-side operations used by StatementHandler.
type StatementQuerier interface {
	GetBalance(context.Context, cqrs.GetBalanceQuery) (*models.BalanceView, error)
	GetStatementOperation(context.Context, cqrs.GetStatementOperationQuery) (*models.StatementView, error)
}

type StatementHandler struct {
	commands StatementCommander
	queries  StatementQuerier
	log      *zap.Logger
}

// CreateStatementRequest accepts the amount as a JSON number or a decimal string.
// Amount rules live in the command service.
type CreateStatementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

type TransferResponse struct {
	Statement []models.StatementView `json:"statement"`
}

func NewStatementHandler(commands StatementCommander, queries StatementQuerier, log *zap.Logger) *StatementHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatementHandler{commands: commands, queries: queries, log: log}
}

func (h *StatementHandler) Deposit(c *gin.Context) {
	h.createStatement(c, models.Deposit)
}

func (h *StatementHandler) Withdraw(c *gin.Context) {
	h.createStatement(c, models.Withdraw)
}

func (h *StatementHandler) createStatement(c *gin.Context, opType models.OperationType) {
	userID, _ := middleware.GetUserID(c)

	var req CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	statement, err := h.commands.CreateStatement(c.Request.Context(), cqrs.CreateStatementCommand{
		UserID:      userID,
		Type:        opType,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		h.respondWithStatementError(c, err, "Failed to create statement")
		return
	}

	c.JSON(http.StatusCreated, models.StatementToView(statement))
}

func (h *StatementHandler) Transfer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	receiverID := c.Param("receiverId")

	var req CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	statements, err := h.commands.CreateTransfer(c.Request.Context(), cqrs.CreateTransferCommand{
		SenderID:    userID,
		ReceiverID:  receiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		h.respondWithStatementError(c, err, "Failed to create transfer")
		return
	}

	views := make([]models.StatementView, 0, len(statements))
	for i := range statements {
		views = append(views, *models.StatementToView(&statements[i]))
	}
	c.JSON(http.StatusCreated, TransferResponse{Statement: views})
}

func (h *StatementHandler) GetBalance(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{UserID: userID})
	if err != nil {
		h.respondWithStatementError(c, err, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *StatementHandler) GetStatement(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.GetStatementOperation(c.Request.Context(), cqrs.GetStatementOperationQuery{
		UserID:      userID,
		StatementID: c.Param("statementId"),
	})
	if err != nil {
		h.respondWithStatementError(c, err, "Failed to get statement")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *StatementHandler) respondWithStatementError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, xerrors.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, xerrors.ErrStatementNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Statement not found")
	case errors.Is(err, xerrors.ErrInsufficientFunds):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
	case errors.Is(err, xerrors.ErrInvalidAmount):
		middleware.RespondWithError(c, http.StatusBadRequest, "Amount must be positive with at most two decimal places")
	case errors.Is(err, xerrors.ErrInvalidOperation):
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid operation type")
	case errors.Is(err, xerrors.ErrSameUser):
		middleware.RespondWithError(c, http.StatusBadRequest, "You cannot transfer to yourself")
	case errors.Is(err, xerrors.ErrPersistence):
		h.log.Error("statement store unavailable", zap.Error(err))
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Statement store unavailable, try again")
	default:
		h.log.Error(fallback, zap.Error(err))
		middleware.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
