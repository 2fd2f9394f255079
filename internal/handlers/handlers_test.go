package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/harunalpak/agentic-traffic-booster/internal/shortlink"
	"github.com/harunalpak/agentic-traffic-booster/internal/tasks"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

var taskCols = []string{"id", "post_id", "campaign_id", "reply_text", "mode", "status", "post_author",
	"post_text", "post_url", "confidence", "short_link", "is_risky", "risk_reason", "created_at", "updated_at"}

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	Init(tasks.NewStore(db), shortlink.NewStore(db), logging.NewLoggerWithService("test"))
	router := gin.New()
	RegisterRoutes(router)
	return router, mock
}

func taskRow(id int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(taskCols).
		AddRow(id, "t1", int64(5), "nice find", models.ModeAuto, status, "alice", "love this sale!",
			"https://x.example/t1", 0.85, "https://bit.ly/abc", false, nil, time.Now(), time.Now())
}

func TestListTasksByStatus(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("FROM tasks").
		WithArgs(models.TaskStatusPending).
		WillReturnRows(taskRow(1, models.TaskStatusPending))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=PENDING", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Status != models.TaskStatusPending {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=SHIPPED", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListTasksEmptyResultIsArray(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("FROM tasks").
		WillReturnRows(sqlmock.NewRows(taskCols))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("FROM tasks").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/99", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestApproveTask(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("UPDATE tasks SET status").
		WithArgs(models.TaskStatusApproved, int64(1)).
		WillReturnRows(taskRow(1, models.TaskStatusApproved))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/1/approve", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != models.TaskStatusApproved {
		t.Errorf("expected APPROVED, got %s", got.Status)
	}
}

func TestUpdateTaskStatusRejectsPending(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/1/status",
		strings.NewReader(`{"status":"PENDING"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for PENDING target, got %d", w.Code)
	}
}

func TestUpdateTaskStatusViaBody(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("UPDATE tasks SET status").
		WithArgs(models.TaskStatusPosted, int64(1)).
		WillReturnRows(taskRow(1, models.TaskStatusPosted))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/1/status",
		strings.NewReader(`{"status":"POSTED"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetTaskStats(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "approved", "rejected", "posted", "risky", "total"}).
			AddRow(int64(4), int64(2), int64(1), int64(3), int64(1), int64(10)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/stats", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got tasks.StatusCounts
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Total != 10 || got.Risky != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
}

func TestGetCampaignStatsWindow(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("campaign_id = \\$1 AND created_at >= \\$2").
		WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "posted", "risky"}).
			AddRow(int64(6), int64(3), int64(1), int64(2), int64(0)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/5/stats?hours=48", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListCampaignLinks(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery("FROM short_links").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "product_id", "original_url", "short_url",
			"provider", "click_count", "created_at"}).
			AddRow(int64(1), int64(5), int64(7), "https://a", "https://s/a", models.LinkProviderExternal, int64(2), time.Now()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/5/links", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []models.ShortLink
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].ClickCount != 2 {
		t.Errorf("unexpected links: %+v", got)
	}
}

func TestRecordLinkClick(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectExec("UPDATE short_links").
		WithArgs("https://s/a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/clicks",
		strings.NewReader(`{"short_url":"https://s/a"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordLinkClickUnknownURL(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectExec("UPDATE short_links").
		WithArgs("https://s/gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/clicks",
		strings.NewReader(`{"short_url":"https://s/gone"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordLinkClickStoreFailure(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectExec("UPDATE short_links").
		WithArgs("https://s/a").
		WillReturnError(sql.ErrConnDone)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/clicks",
		strings.NewReader(`{"short_url":"https://s/a"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordLinkClickRequiresURL(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/clicks", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
