package create

import (
	"bytes"
	"context"
	"encoding/json"
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

func (m *ServiceMock) Create(ctx context.Context, requester *models.User, draft models.TaskDraft) (string, error) {
	args := m.Called(ctx, requester, draft)
	return args.String(0), args.Error(1)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name      string
		body      string
		wantDraft *models.TaskDraft
		mockID    string
		mockErr   error
		wantCode  int
		wantError string
	}{
		{
			name: "created with defaults left to the service",
			body: `{"title":"Design Landing Page","description":"d","assigned_to":"u1","due_date":"2026-02-15"}`,
			wantDraft: &models.TaskDraft{
				Title: "Design Landing Page", Description: "d", AssignedTo: "u1", DueDate: "2026-02-15",
			},
			mockID:   "t1",
			wantCode: http.StatusOK,
		},
		{
			name: "explicit status and priority",
			body: `{"title":"x","assigned_to":"u1","status":"in_progress","priority":"urgent"}`,
			wantDraft: &models.TaskDraft{
				Title: "x", AssignedTo: "u1", Status: models.StatusInProgress, Priority: models.PriorityUrgent,
			},
			mockID:   "t2",
			wantCode: http.StatusOK,
		},
		{
			name:      "invalid json",
			body:      `{`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid request body",
		},
		{
			name:      "missing title",
			body:      `{"assigned_to":"u1"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "field Title is a required field",
		},
		{
			name:      "unknown priority",
			body:      `{"title":"x","assigned_to":"u1","priority":"critical"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "field Priority must be one of: low, medium, high, urgent",
		},
		{
			name:      "assignee not found",
			body:      `{"title":"x","assigned_to":"ghost"}`,
			wantDraft: &models.TaskDraft{Title: "x", AssignedTo: "ghost"},
			mockErr:   models.Errorf(models.ErrNotFound, "Assigned user not found"),
			wantCode:  http.StatusNotFound,
			wantError: "Assigned user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.wantDraft != nil {
				svc.On("Create", mock.Anything, admin, *tt.wantDraft).Return(tt.mockID, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			req = req.WithContext(middlewarectx.WithUser(ctx, admin))
			rec := httptest.NewRecorder()

			New(log, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, tt.mockID, data["task_id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
