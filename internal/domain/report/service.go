package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements the report lifecycle: submission, triage attachment,
// status transitions, the review sub-workflow (review.go) and dashboard
// aggregation.
type Service struct {
	reports Repository
}

func NewService(reports Repository) *Service {
	return &Service{reports: reports}
}

// Submit validates and persists a new report. Status, priority and the
// workflow fields are owned by the engine; anything the caller put there is
// overwritten.
func (s *Service) Submit(ctx context.Context, actor Actor, rep *Report) (*Report, error) {
	if rep == nil {
		return nil, fmt.Errorf("%w: report body is required", ErrValidation)
	}
	if actor.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: reporter identity is required", ErrValidation)
	}
	if strings.TrimSpace(rep.Medicine.Name) == "" {
		return nil, fmt.Errorf("%w: medicine name is required", ErrValidation)
	}
	if len(rep.SideEffects) == 0 {
		return nil, fmt.Errorf("%w: at least one side effect is required", ErrValidation)
	}
	for i, se := range rep.SideEffects {
		if strings.TrimSpace(se.Effect) == "" {
			return nil, fmt.Errorf("%w: side effect %d has no description", ErrValidation, i)
		}
		if !se.Severity.Valid() {
			return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, se.Severity)
		}
	}

	rep.ReporterID = actor.ID
	rep.Status = StatusPending
	rep.Triage = nil
	rep.DoctorReview = nil
	rep.ReviewHistory = nil
	rep.Comments = nil
	rep.Priority = DerivePriority(rep.SideEffects, nil)

	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Get returns a single report by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.reports.GetByID(ctx, id)
}

// List returns a filtered page of reports plus the unpaged total. StatusAll
// reads the same as no status filter.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Report, int, error) {
	if f.Status == StatusAll {
		f.Status = ""
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	return s.reports.List(ctx, f, limit, offset)
}

// AttachTriage records triage metadata on a report and recomputes its
// priority. Triage only makes sense before a verdict, so it is rejected once
// the report has left pending/under_review.
func (s *Service) AttachTriage(ctx context.Context, id uuid.UUID, triage *TriageMetadata) (*Report, error) {
	if triage == nil {
		return nil, fmt.Errorf("%w: triage payload is required", ErrValidation)
	}
	if !triage.PatientGuidance.UrgencyLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency level %q", ErrValidation, triage.PatientGuidance.UrgencyLevel)
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.Status != StatusPending && rep.Status != StatusUnderReview {
		return nil, fmt.Errorf("%w: cannot attach triage to a %s report", ErrInvalidState, rep.Status)
	}

	if triage.AnalyzedAt.IsZero() {
		triage.AnalyzedAt = time.Now().UTC()
	}
	rep.Triage = triage
	rep.Priority = DerivePriority(rep.SideEffects, rep.Triage)
	rep.UpdatedAt = time.Now().UTC()

	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Transition moves a report along an edge of the status state machine. Every
// edge except pending -> under_review requires a reviewer (doctor or admin).
// An optional comment is recorded with the transition.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, actor Actor, target Status, comment string) (*Report, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rep.Status, target) {
		return nil, &TransitionError{From: rep.Status, To: target}
	}
	if requiresReviewerRole(rep.Status, target) && !actor.CanReview() {
		return nil, fmt.Errorf("%w: %s may not move a report to %s", ErrForbidden, actor.Role, target)
	}

	now := time.Now().UTC()
	rep.Status = target
	if c := strings.TrimSpace(comment); c != "" {
		rep.Comments = append(rep.Comments, Comment{
			AuthorID:  actor.ID,
			Role:      actor.Role,
			Text:      c,
			CreatedAt: now,
		})
	}
	rep.UpdatedAt = now

	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Reopen puts an archived or rejected report back under review. Admin only;
// this is the single sanctioned exit from the terminal state.
func (s *Service) Reopen(ctx context.Context, id uuid.UUID, actor Actor, comment string) (*Report, error) {
	if actor.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may reopen reports", ErrForbidden)
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.Status != StatusArchived && rep.Status != StatusRejected {
		return nil, fmt.Errorf("%w: cannot reopen a %s report", ErrInvalidState, rep.Status)
	}

	now := time.Now().UTC()
	rep.Status = StatusUnderReview
	if c := strings.TrimSpace(comment); c != "" {
		rep.Comments = append(rep.Comments, Comment{
			AuthorID:  actor.ID,
			Role:      actor.Role,
			Text:      c,
			CreatedAt: now,
		})
	}
	rep.UpdatedAt = now

	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// DashboardStats aggregates all reports into the dashboard counters.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	reports, err := s.reports.ListAll(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return ComputeDashboardStats(reports, time.Now().UTC()), nil
}

// Browse applies in-memory filter/search/sort plus pagination, for the
// dashboard listing that needs severity ordering and free-text search.
func (s *Service) Browse(ctx context.Context, q Query, page, pageSize int) (Page, error) {
	if q.Status != "" && q.Status != StatusAll && !q.Status.Valid() {
		return Page{}, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	reports, err := s.reports.ListAll(ctx)
	if err != nil {
		return Page{}, err
	}
	return Paginate(FilterAndSort(reports, q), page, pageSize), nil
}
