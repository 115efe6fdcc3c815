package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ---- mock implementations ----

type mockStatementCommander struct {
	createFn   func(cqrs.CreateStatementCommand) (*models.Statement, error)
	transferFn func(cqrs.CreateTransferCommand) ([]models.Statement, error)
}

func (m *mockStatementCommander) CreateStatement(_ context.Context, cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockStatementCommander) CreateTransfer(_ context.Context, cmd cqrs.CreateTransferCommand) ([]models.Statement, error) {
	if m.transferFn != nil {
		return m.transferFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockStatementQuerier struct {
	balanceFn func(cqrs.GetBalanceQuery) (*models.BalanceView, error)
	getFn     func(cqrs.GetStatementOperationQuery) (*models.StatementView, error)
}

func (m *mockStatementQuerier) GetBalance(_ context.Context, q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
	if m.balanceFn != nil {
		return m.balanceFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockStatementQuerier) GetStatementOperation(_ context.Context, q cqrs.GetStatementOperationQuery) (*models.StatementView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func newTestRouter(cmds StatementCommander, qrys StatementQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authUserID))
	h := NewStatementHandler(cmds, qrys, nil)
	v1 := r.Group("/v1/statements")
	v1.GET("/balance", h.GetBalance)
	v1.POST("/deposit", h.Deposit)
	v1.POST("/withdraw", h.Withdraw)
	v1.POST("/transfers/:receiverId", h.Transfer)
	v1.GET("/:statementId", h.GetStatement)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var testStatement = &models.Statement{
	ID: "stm-001", UserID: "usr-001", Type: models.Deposit,
	Amount: decimal.RequireFromString("100.00"), Description: "salary",
	CreatedAt: time.Now(),
}

var testView = models.StatementToView(testStatement)

// rejectAmount mirrors the command service: non-positive amounts are refused.
func rejectAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", xerrors.ErrInvalidAmount)
	}
	return nil
}

func amountBody(amount interface{}) map[string]interface{} {
	return map[string]interface{}{"amount": amount, "description": "test"}
}

// ---- tests ----

func TestCreateStatement(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           interface{}
		createFn       func(cqrs.CreateStatementCommand) (*models.Statement, error)
		expectedStatus int
		expectedType   models.OperationType
	}{
		{
			name: "success - deposit with numeric amount",
			path: "/v1/statements/deposit",
			body: amountBody(100),
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				return testStatement, nil
			},
			expectedStatus: http.StatusCreated,
			expectedType:   models.Deposit,
		},
		{
			name: "success - withdraw with string amount",
			path: "/v1/statements/withdraw",
			body: amountBody("30.50"),
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				return testStatement, nil
			},
			expectedStatus: http.StatusCreated,
			expectedType:   models.Withdraw,
		},
		{
			name:           "unprocessable entity - insufficient funds",
			path:           "/v1/statements/withdraw",
			body:           amountBody(1000),
			createFn:       func(cqrs.CreateStatementCommand) (*models.Statement, error) { return nil, xerrors.ErrInsufficientFunds },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "not found - user does not exist",
			path:           "/v1/statements/deposit",
			body:           amountBody(10),
			createFn:       func(cqrs.CreateStatementCommand) (*models.Statement, error) { return nil, xerrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "bad request - too many decimal places",
			path: "/v1/statements/deposit",
			body: amountBody("1.001"),
			createFn: func(cqrs.CreateStatementCommand) (*models.Statement, error) {
				return nil, fmt.Errorf("%w: scale", xerrors.ErrInvalidAmount)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service unavailable - store failure",
			path: "/v1/statements/deposit",
			body: amountBody(10),
			createFn: func(cqrs.CreateStatementCommand) (*models.Statement, error) {
				return nil, xerrors.Persistence("append statement", fmt.Errorf("connection reset"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "internal error - unexpected failure",
			path:           "/v1/statements/deposit",
			body:           amountBody(10),
			createFn:       func(cqrs.CreateStatementCommand) (*models.Statement, error) { return nil, fmt.Errorf("boom") },
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "bad request - missing amount",
			path: "/v1/statements/deposit",
			body: map[string]interface{}{},
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				return nil, rejectAmount(cmd.Amount)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - amount is zero",
			path: "/v1/statements/deposit",
			body: amountBody(0),
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				return nil, rejectAmount(cmd.Amount)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - negative amount",
			path: "/v1/statements/withdraw",
			body: amountBody("-5"),
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				return nil, rejectAmount(cmd.Amount)
			},
			expectedStatus: http.StatusBadRequest,
			expectedType:   models.Withdraw,
		},
		{
			name: "bad request - amount below float precision",
			path: "/v1/statements/deposit",
			body: amountBody("1e-400"),
			createFn: func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
				if !cmd.Amount.IsPositive() {
					return nil, fmt.Errorf("expected the exact decimal, got %s", cmd.Amount)
				}
				return nil, fmt.Errorf("%w: amount supports at most 2 decimal places", xerrors.ErrInvalidAmount)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - amount is not a number",
			path:           "/v1/statements/deposit",
			body:           amountBody("ten"),
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotType models.OperationType
			var gotUser string
			createFn := tt.createFn
			if createFn != nil {
				createFn = func(cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
					gotType, gotUser = cmd.Type, cmd.UserID
					return tt.createFn(cmd)
				}
			}
			router := newTestRouter(&mockStatementCommander{createFn: createFn}, &mockStatementQuerier{}, "usr-001")
			w := doRequest(router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedType != "" && gotType != tt.expectedType {
				t.Errorf("[%s] expected command type %s got %s", tt.name, tt.expectedType, gotType)
			}
			if createFn != nil && gotUser != "usr-001" {
				t.Errorf("[%s] expected user from token, got %q", tt.name, gotUser)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	pair := []models.Statement{
		{ID: "stm-001", UserID: "usr-001", SenderID: "usr-002", Type: models.TransferSent, Amount: decimal.NewFromInt(5)},
		{ID: "stm-002", UserID: "usr-002", SenderID: "usr-001", Type: models.TransferReceived, Amount: decimal.NewFromInt(5)},
	}
	tests := []struct {
		name           string
		receiver       string
		body           interface{}
		transferFn     func(cqrs.CreateTransferCommand) ([]models.Statement, error)
		expectedStatus int
	}{
		{
			name:     "success - transfer to another user",
			receiver: "usr-002",
			body:     amountBody("5"),
			transferFn: func(cmd cqrs.CreateTransferCommand) ([]models.Statement, error) {
				if cmd.SenderID != "usr-001" || cmd.ReceiverID != "usr-002" {
					return nil, fmt.Errorf("unexpected parties %s -> %s", cmd.SenderID, cmd.ReceiverID)
				}
				return pair, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - transfer to self",
			receiver:       "usr-001",
			body:           amountBody("5"),
			transferFn:     func(cqrs.CreateTransferCommand) ([]models.Statement, error) { return nil, xerrors.ErrSameUser },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found - receiver does not exist",
			receiver:       "usr-404",
			body:           amountBody("5"),
			transferFn:     func(cqrs.CreateTransferCommand) ([]models.Statement, error) { return nil, xerrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unprocessable entity - sender cannot cover amount",
			receiver:       "usr-002",
			body:           amountBody("500"),
			transferFn:     func(cqrs.CreateTransferCommand) ([]models.Statement, error) { return nil, xerrors.ErrInsufficientFunds },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:     "bad request - missing amount",
			receiver: "usr-002",
			body:     map[string]interface{}{},
			transferFn: func(cmd cqrs.CreateTransferCommand) ([]models.Statement, error) {
				return nil, rejectAmount(cmd.Amount)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockStatementCommander{transferFn: tt.transferFn}, &mockStatementQuerier{}, "usr-001")
			w := doRequest(router, http.MethodPost, "/v1/statements/transfers/"+tt.receiver, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name            string
		balanceFn       func(cqrs.GetBalanceQuery) (*models.BalanceView, error)
		expectedStatus  int
		expectedBalance string
	}{
		{
			name: "success - balance with history",
			balanceFn: func(q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
				return &models.BalanceView{Balance: decimal.RequireFromString("70"), Statement: []models.StatementView{*testView}}, nil
			},
			expectedStatus:  http.StatusOK,
			expectedBalance: "70",
		},
		{
			name: "success - empty history",
			balanceFn: func(q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
				return &models.BalanceView{Balance: decimal.Zero, Statement: []models.StatementView{}}, nil
			},
			expectedStatus:  http.StatusOK,
			expectedBalance: "0",
		},
		{
			name:           "not found - user does not exist",
			balanceFn:      func(cqrs.GetBalanceQuery) (*models.BalanceView, error) { return nil, xerrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockStatementCommander{}, &mockStatementQuerier{balanceFn: tt.balanceFn}, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/statements/balance", nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBalance == "" {
				return
			}
			var resp struct {
				Balance   decimal.Decimal   `json:"balance"`
				Statement []json.RawMessage `json:"statement"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("[%s] decode: %v", tt.name, err)
			}
			if !resp.Balance.Equal(decimal.RequireFromString(tt.expectedBalance)) {
				t.Errorf("[%s] expected balance %s got %s", tt.name, tt.expectedBalance, resp.Balance)
			}
			if resp.Statement == nil {
				t.Errorf("[%s] expected a statement array", tt.name)
			}
		})
	}
}

func TestGetStatement(t *testing.T) {
	tests := []struct {
		name           string
		statementID    string
		getFn          func(cqrs.GetStatementOperationQuery) (*models.StatementView, error)
		expectedStatus int
	}{
		{
			name:        "success - fetch own statement",
			statementID: "stm-001",
			getFn: func(q cqrs.GetStatementOperationQuery) (*models.StatementView, error) {
				return testView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "not found - statement belongs to another user",
			statementID: "stm-other",
			getFn: func(q cqrs.GetStatementOperationQuery) (*models.StatementView, error) {
				return nil, xerrors.ErrStatementNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "not found - user does not exist",
			statementID: "stm-001",
			getFn: func(q cqrs.GetStatementOperationQuery) (*models.StatementView, error) {
				return nil, xerrors.ErrUserNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockStatementCommander{}, &mockStatementQuerier{getFn: tt.getFn}, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/statements/"+tt.statementID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusOK && strings.Contains(w.Body.String(), "user_id") {
				t.Errorf("[%s] statement view must not expose user_id: %s", tt.name, w.Body.String())
			}
		})
	}
}
