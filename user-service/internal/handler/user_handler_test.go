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
)

// ---- mock implementations ----

type mockUserCommander struct {
	createFn func(cqrs.CreateUserCommand) (*models.User, error)
}

func (m *mockUserCommander) CreateUser(_ context.Context, cmd cqrs.CreateUserCommand) (*models.User, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockUserQuerier struct {
	profileFn func(cqrs.ShowUserProfileQuery) (*models.UserView, error)
}

func (m *mockUserQuerier) ShowUserProfile(_ context.Context, q cqrs.ShowUserProfileQuery) (*models.UserView, error) {
	if m.profileFn != nil {
		return m.profileFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuthUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func newUserTestRouter(cmds UserCommander, qrys UserQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuthUser(authUserID))
	h := NewUserHandler(cmds, qrys, nil)
	v1 := r.Group("/v1/users")
	v1.POST("", h.CreateUser)
	v1.GET("/profile", h.ShowProfile)
	return r
}

func userDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
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

var uTestUser = &models.User{
	ID: "usr-001", Name: "Alice", Email: "alice@example.com",
	PasswordHash: "$2a$10$hash",
	CreatedAt:    time.Now(), UpdatedAt: time.Now(),
}

var uTestUserView = models.UserToView(uTestUser)

func uValidCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"name": "Alice Smith", "email": "alice@example.com", "password": "securepass123",
	}
}

// ---- tests ----

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateUserCommand) (*models.User, error)
		expectedStatus int
	}{
		{
			name:           "success - create user with valid data",
			body:           uValidCreateBody(),
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.User, error) { return uTestUser, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "conflict - email already registered",
			body:           uValidCreateBody(),
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.User, error) { return nil, xerrors.ErrEmailAlreadyExists },
			expectedStatus: http.StatusConflict,
		},
		{
			name: "service unavailable - database down",
			body: uValidCreateBody(),
			createFn: func(cmd cqrs.CreateUserCommand) (*models.User, error) {
				return nil, xerrors.Persistence("create user", fmt.Errorf("connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{"name": "Alice"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid email",
			body:           map[string]interface{}{"name": "Alice", "email": "not-an-email", "password": "securepass123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - password too short",
			body:           map[string]interface{}{"name": "Alice", "email": "alice@example.com", "password": "short"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{createFn: tt.createFn}, &mockUserQuerier{}, "")
			w := userDoRequest(router, http.MethodPost, "/v1/users", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusCreated && strings.Contains(w.Body.String(), "hash") {
				t.Errorf("[%s] response must not leak the password hash: %s", tt.name, w.Body.String())
			}
		})
	}
}

func TestShowProfile(t *testing.T) {
	tests := []struct {
		name           string
		profileFn      func(cqrs.ShowUserProfileQuery) (*models.UserView, error)
		expectedStatus int
	}{
		{
			name: "success - own profile",
			profileFn: func(q cqrs.ShowUserProfileQuery) (*models.UserView, error) {
				if q.UserID != "usr-001" {
					return nil, fmt.Errorf("unexpected user %s", q.UserID)
				}
				return uTestUserView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - user no longer exists",
			profileFn:      func(cqrs.ShowUserProfileQuery) (*models.UserView, error) { return nil, xerrors.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "internal error - unexpected failure",
			profileFn:      func(cqrs.ShowUserProfileQuery) (*models.UserView, error) { return nil, fmt.Errorf("boom") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{profileFn: tt.profileFn}, "usr-001")
			w := userDoRequest(router, http.MethodGet, "/v1/users/profile", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
