package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/handler"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
)

func emptyPortal() *fakePortalUsecase {
	return &fakePortalUsecase{
		listTasks: func(_ context.Context, _ *domain.Student) ([]*domain.Task, error) {
			return []*domain.Task{{ID: "t1"}}, nil
		},
		listSubmissions: func(_ context.Context, _ *domain.Student) ([]*domain.Submission, error) {
			return nil, nil
		},
		listSchedules: func(_ context.Context, _ usecase.ScheduleFilter) ([]*domain.Schedule, error) {
			return nil, nil
		},
		listReservations: func(_ context.Context, _ *domain.Student) ([]*domain.Schedule, error) {
			return nil, nil
		},
	}
}

func newPageEngine(portal *fakePortalUsecase) *gin.Engine {
	h := handler.NewPageHandler(newStore(), &fakeAuthUsecase{}, portal, discardLogger())
	r := gin.New()
	r.GET("/login", h.Login)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/dashboard/schedule", h.Schedule)
	r.GET("/dashboard/task", h.Task)
	r.GET("/dashboard/setup-password", h.SetupPassword)
	return r
}

func TestLoginPage_ReportsMarkers(t *testing.T) {
	w := httptest.NewRecorder()
	newPageEngine(emptyPortal()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?forced_logout=true&error=user_retired", nil))

	body := decode(t, w)
	if body["page"] != "login" || body["forced_logout"] != true || body["error"] != "user_retired" {
		t.Errorf("body = %v", body)
	}
}

func TestDashboardPages_InvalidSessionIsWiped(t *testing.T) {
	for _, path := range []string{"/dashboard", "/dashboard/schedule", "/dashboard/task", "/dashboard/setup-password"} {
		portal := emptyPortal()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "stale"})
		w := httptest.NewRecorder()
		newPageEngine(portal).ServeHTTP(w, req)

		if loc := w.Header().Get("Location"); loc != "/login?session_invalid=true" {
			t.Errorf("%s: location = %q", path, loc)
		}
		if responseCookie(w, session.TokenCookie) == nil {
			t.Errorf("%s: expected session cookie to be cleared", path)
		}
		if portal.touched != 0 {
			t.Errorf("%s: last-viewed touched for invalid session", path)
		}
	}
}

func TestDashboard_RedirectsToLanding(t *testing.T) {
	w := httptest.NewRecorder()
	newPageEngine(emptyPortal()).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil)))
	if loc := w.Header().Get("Location"); loc != "/dashboard/schedule" {
		t.Errorf("location = %q", loc)
	}
}

func TestTaskPage_RendersAndTouches(t *testing.T) {
	portal := emptyPortal()
	w := httptest.NewRecorder()
	newPageEngine(portal).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/task", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode(t, w)
	if body["page"] != "task" {
		t.Errorf("page = %v", body["page"])
	}
	tasks, _ := body["tasks"].([]any)
	if len(tasks) != 1 {
		t.Errorf("tasks = %v", body["tasks"])
	}
	if subs, ok := body["submissions"].([]any); !ok || len(subs) != 0 {
		t.Errorf("submissions should be an empty list, got %v", body["submissions"])
	}
	if portal.touched != 1 {
		t.Errorf("touched = %d, want 1", portal.touched)
	}
}

func TestSchedulePage_Renders(t *testing.T) {
	w := httptest.NewRecorder()
	newPageEngine(emptyPortal()).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/schedule", nil)))

	body := decode(t, w)
	if body["page"] != "schedule" {
		t.Errorf("page = %v", body["page"])
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "aiko@example.com" || user["has_password"] != false {
		t.Errorf("user = %v", user)
	}
}
