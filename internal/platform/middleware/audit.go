package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adrflow/adrflow/internal/platform/auth"
)

// AuditEntry captures who did what to which report, when and from where.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	ReportID   string
	Action     string
	IPAddress  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries. The middleware always emits a
// structured log; a recorder adds durable storage on top of that.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns Echo middleware that logs every mutating request under
// /api/v1/ with the authenticated actor, the target report, and the workflow
// action performed. Reads are not audited.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if req.Method == http.MethodGet || req.Method == http.MethodHead ||
				!strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			ctx := req.Context()
			entry := AuditEntry{
				UserID:     auth.UserIDFromContext(ctx),
				UserRoles:  auth.RolesFromContext(ctx),
				ReportID:   extractReportID(path),
				Action:     auditAction(req.Method, path),
				IPAddress:  c.RealIP(),
				Path:       path,
				Method:     req.Method,
				Timestamp:  time.Now().UTC(),
				StatusCode: c.Response().Status,
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("report_id", entry.ReportID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("report_access")

			return err
		}
	}
}

// auditAction derives the workflow action name from the request. Sub-resource
// routes like /reports/:id/transition name the action directly; a bare POST to
// a collection is a create.
func auditAction(method, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	last := segments[len(segments)-1]
	switch last {
	case "transition", "reopen", "triage", "analyze", "review", "review-request":
		return last
	}
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// extractReportID finds the report UUID in paths like /api/v1/reports/<id>
// or /api/v1/reports/<id>/transition.
func extractReportID(path string) string {
	if !strings.HasPrefix(path, "/api/v1/reports/") {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/reports/"), "/")
	if len(segments) == 0 {
		return ""
	}
	if _, err := uuid.Parse(segments[0]); err != nil {
		return ""
	}
	return segments[0]
}
