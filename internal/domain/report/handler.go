package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/adrflow/adrflow/internal/platform/auth"
	"github.com/adrflow/adrflow/pkg/pagination"
)

// TriageProducer produces triage metadata for a report. The OpenAI-backed
// analyzer in platform/triage implements it; handlers work without one (the
// analyze endpoint then returns 503).
type TriageProducer interface {
	Analyze(ctx context.Context, rep *Report) (*TriageMetadata, error)
}

type Handler struct {
	svc      *Service
	producer TriageProducer
}

func NewHandler(svc *Service, producer TriageProducer) *Handler {
	return &Handler{svc: svc, producer: producer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	anyRole := auth.RequireRole("patient", "doctor", "admin")
	reviewer := auth.RequireRole("doctor", "admin")
	admin := auth.RequireRole("admin")

	general := api.Group("", anyRole)
	general.POST("/reports", h.SubmitReport)
	general.GET("/reports", h.ListReports)
	general.GET("/reports/:id", h.GetReport)
	general.POST("/reports/:id/review-request", h.RequestReview)
	general.POST("/reports/:id/transition", h.TransitionReport)

	rev := api.Group("", reviewer)
	rev.POST("/reports/:id/triage", h.AttachTriage)
	rev.POST("/reports/:id/analyze", h.AnalyzeReport)
	rev.POST("/reports/:id/review", h.AnswerReview)
	rev.GET("/reviews/pending", h.ListPendingReviews)
	rev.GET("/reports/stats", h.DashboardStats)

	adm := api.Group("", admin)
	adm.POST("/reports/:id/reopen", h.ReopenReport)
}

func (h *Handler) SubmitReport(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var rep Report
	if err := c.Bind(&rep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Submit(c.Request().Context(), actor, &rep)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	// The version doubles as a weak ETag so clients can detect concurrent
	// modification before issuing a write.
	c.Response().Header().Set("ETag", fmt.Sprintf(`W/"%d"`, rep.VersionID))
	return c.JSON(http.StatusOK, rep)
}

// ListReports serves both listing modes: plain repository filtering with
// limit/offset, and, when search/sort/page parameters are present, the
// in-memory dashboard listing with 1-indexed pages.
func (h *Handler) ListReports(c echo.Context) error {
	if c.QueryParam("search") != "" || c.QueryParam("sortBy") != "" || c.QueryParam("page") != "" {
		pp := pagination.PageFromContext(c)
		q := Query{
			Status:    Status(c.QueryParam("status")),
			Search:    c.QueryParam("search"),
			SortBy:    SortField(c.QueryParam("sortBy")),
			SortOrder: SortOrder(c.QueryParam("sortOrder")),
		}
		page, err := h.svc.Browse(c.Request().Context(), q, pp.Page, pp.PageSize)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, page)
	}

	pg := pagination.FromContext(c)
	f := Filter{
		Status:   Status(c.QueryParam("status")),
		Priority: Priority(c.QueryParam("priority")),
	}
	if rid := c.QueryParam("reporter_id"); rid != "" {
		id, err := uuid.Parse(rid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reporter_id")
		}
		f.ReporterID = &id
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) TransitionReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var body struct {
		Status  Status `json:"status"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Transition(c.Request().Context(), id, actor, body.Status, body.Comment)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) AttachTriage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var triage TriageMetadata
	if err := c.Bind(&triage); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.AttachTriage(c.Request().Context(), id, &triage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

// AnalyzeReport runs the configured triage producer against the report and
// attaches the result.
func (h *Handler) AnalyzeReport(c echo.Context) error {
	if h.producer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "triage analysis is not configured")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	triage, err := h.producer.Analyze(c.Request().Context(), rep)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "triage analysis failed")
	}
	updated, err := h.svc.AttachTriage(c.Request().Context(), id, triage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) RequestReview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.RequestReview(c.Request().Context(), id, actor, body.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) AnswerReview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var ans ReviewAnswer
	if err := c.Bind(&ans); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.AnswerReview(c.Request().Context(), id, actor, ans)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) ListPendingReviews(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPendingReviews(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.svc.DashboardStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ReopenReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var body struct {
		Comment string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Reopen(c.Request().Context(), id, actor, body.Comment)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}

// actorFromContext builds the acting identity from the auth middleware's
// request context. Roles collapse to the strongest one.
func actorFromContext(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	role := RolePatient
	for _, r := range auth.RolesFromContext(ctx) {
		switch Role(r) {
		case RoleAdmin:
			role = RoleAdmin
		case RoleDoctor:
			if role != RoleAdmin {
				role = RoleDoctor
			}
		}
	}
	return Actor{ID: id, Role: role}, nil
}

// httpError maps domain errors to HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
