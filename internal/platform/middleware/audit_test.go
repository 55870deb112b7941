package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adrflow/adrflow/internal/platform/auth"
)

func auditRequest(t *testing.T, method, target string, recorder AuditRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "00000000-0000-0000-0000-000000000001")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"doctor"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAudit_RecordsMutation(t *testing.T) {
	var got *AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		got = &entry
		return nil
	})

	id := "8f14e45f-ceea-4e7f-b3c1-2a1f0a9f6d21"
	auditRequest(t, http.MethodPost, "/api/v1/reports/"+id+"/transition", recorder)

	if got == nil {
		t.Fatal("expected audit entry to be recorded")
	}
	if got.Action != "transition" {
		t.Errorf("expected action transition, got %q", got.Action)
	}
	if got.ReportID != id {
		t.Errorf("expected report id %s, got %q", id, got.ReportID)
	}
	if got.UserID != "00000000-0000-0000-0000-000000000001" {
		t.Errorf("unexpected user id %q", got.UserID)
	}
	if got.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", got.StatusCode)
	}
}

func TestAudit_SkipsReads(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		called = true
		return nil
	})

	auditRequest(t, http.MethodGet, "/api/v1/reports", recorder)

	if called {
		t.Error("expected GET requests to be skipped")
	}
}

func TestAudit_SkipsNonAPIRoutes(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		called = true
		return nil
	})

	auditRequest(t, http.MethodPost, "/health", recorder)

	if called {
		t.Error("expected non-API routes to be skipped")
	}
}

func TestAuditAction(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/api/v1/reports", "create"},
		{http.MethodPost, "/api/v1/reports/abc/reopen", "reopen"},
		{http.MethodPost, "/api/v1/reports/abc/review", "review"},
		{http.MethodPost, "/api/v1/reports/abc/review-request", "review-request"},
		{http.MethodPost, "/api/v1/reports/abc/analyze", "analyze"},
		{http.MethodDelete, "/api/v1/reports/abc", "delete"},
		{http.MethodPatch, "/api/v1/reports/abc", "update"},
	}
	for _, tt := range tests {
		if got := auditAction(tt.method, tt.path); got != tt.want {
			t.Errorf("auditAction(%s, %s) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestExtractReportID(t *testing.T) {
	id := "8f14e45f-ceea-4e7f-b3c1-2a1f0a9f6d21"
	if got := extractReportID("/api/v1/reports/" + id); got != id {
		t.Errorf("expected %s, got %q", id, got)
	}
	if got := extractReportID("/api/v1/reports/" + id + "/review"); got != id {
		t.Errorf("expected %s from sub-resource path, got %q", id, got)
	}
	if got := extractReportID("/api/v1/reports/not-a-uuid"); got != "" {
		t.Errorf("expected empty for non-uuid segment, got %q", got)
	}
	if got := extractReportID("/api/v1/reviews/pending"); got != "" {
		t.Errorf("expected empty for non-report path, got %q", got)
	}
}
