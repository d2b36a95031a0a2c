package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, requester *models.User, nu models.NewUser) (string, error) {
	args := m.Called(ctx, requester, nu)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	admin := &models.User{ID: "admin-id", Role: models.RoleAdmin}
	valid := Request{Fullname: "John Doe", Email: "jdoe@example.com", Password: "secret"}

	tests := []struct {
		name        string
		body        any
		mockID      string
		mockErr     error
		callService bool
		wantCode    int
		wantStatus  string
		wantError   string
	}{
		{
			name:        "success",
			body:        valid,
			mockID:      "new-id",
			callService: true,
			wantCode:    http.StatusOK,
			wantStatus:  "OK",
		},
		{
			name:       "invalid json body",
			body:       "not a json",
			wantCode:   http.StatusBadRequest,
			wantStatus: "Error",
			wantError:  "invalid request body",
		},
		{
			name:       "invalid email",
			body:       Request{Fullname: "x", Email: "nope", Password: "p"},
			wantCode:   http.StatusUnprocessableEntity,
			wantStatus: "Error",
			wantError:  "field Email must be a valid email",
		},
		{
			name:       "unknown role",
			body:       Request{Fullname: "x", Email: "x@example.com", Password: "p", Role: "root"},
			wantCode:   http.StatusUnprocessableEntity,
			wantStatus: "Error",
			wantError:  "field Role must be one of: user, admin",
		},
		{
			name:        "duplicate email",
			body:        valid,
			mockErr:     models.Errorf(models.ErrConflict, "User with this email already exists"),
			callService: true,
			wantCode:    http.StatusBadRequest,
			wantStatus:  "Error",
			wantError:   "User with this email already exists",
		},
		{
			name:        "storage failure hides details",
			body:        valid,
			mockErr:     errors.New("connection reset"),
			callService: true,
			wantCode:    http.StatusInternalServerError,
			wantStatus:  "Error",
			wantError:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Register", mock.Anything, admin, models.NewUser{
					Fullname: valid.Fullname, Email: valid.Email, Password: valid.Password,
				}).Return(tt.mockID, tt.mockErr).Once()
			}

			var body []byte
			switch v := tt.body.(type) {
			case string:
				body = []byte(v)
			default:
				var err error
				body, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			req = req.WithContext(middlewarectx.WithUser(ctx, admin))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, tt.mockID, data["user_id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
