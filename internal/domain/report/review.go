package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewAnswer is a doctor's response to an open review request.
type ReviewAnswer struct {
	Remarks        string `json:"remarks"`
	Recommendation string `json:"recommendation"`
	ActionRequired bool   `json:"actionRequired"`
	AgreedWithAI   bool   `json:"agreedWithAi"`
}

// RequestReview opens a doctor-review request on a report. Only one request
// may be open at a time; answering the previous one (or having none) is the
// precondition. An answered request is moved into ReviewHistory so earlier
// opinions are never lost.
func (s *Service) RequestReview(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*Report, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch rep.Status {
	case StatusPending, StatusUnderReview, StatusReviewed:
	default:
		return nil, fmt.Errorf("%w: cannot request review on a %s report", ErrInvalidState, rep.Status)
	}
	if rep.ReviewState() == ReviewRequested {
		return nil, fmt.Errorf("%w: a review is already requested", ErrInvalidState)
	}

	if rep.DoctorReview != nil && rep.DoctorReview.State == ReviewAnswered {
		rep.ReviewHistory = append(rep.ReviewHistory, *rep.DoctorReview)
	}

	now := time.Now().UTC()
	rep.DoctorReview = &ReviewRequest{
		State:         ReviewRequested,
		RequestedAt:   now,
		RequestReason: strings.TrimSpace(reason),
	}
	rep.UpdatedAt = now

	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// AnswerReview records a doctor's answer on the open review request and, in
// the same write, advances a pending or under_review report to reviewed. The
// two effects are one update so a concurrent writer cannot observe the answer
// without the status advance.
func (s *Service) AnswerReview(ctx context.Context, id uuid.UUID, actor Actor, ans ReviewAnswer) (*Report, error) {
	if !actor.CanReview() {
		return nil, fmt.Errorf("%w: only doctors and admins may answer reviews", ErrForbidden)
	}
	if strings.TrimSpace(ans.Remarks) == "" {
		return nil, fmt.Errorf("%w: remarks are required", ErrValidation)
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.ReviewState() != ReviewRequested {
		return nil, fmt.Errorf("%w: no open review request", ErrInvalidState)
	}

	now := time.Now().UTC()
	rep.DoctorReview.State = ReviewAnswered
	rep.DoctorReview.ReviewerID = &actor.ID
	rep.DoctorReview.Remarks = strings.TrimSpace(ans.Remarks)
	rep.DoctorReview.Recommendation = strings.TrimSpace(ans.Recommendation)
	rep.DoctorReview.ActionRequired = ans.ActionRequired
	rep.DoctorReview.AgreedWithAI = ans.AgreedWithAI
	rep.DoctorReview.AnsweredAt = &now

	if rep.Status == StatusPending || rep.Status == StatusUnderReview {
		rep.Status = StatusReviewed
	}
	rep.UpdatedAt = now

	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// ListPendingReviews returns reports whose review request is still open,
// newest request first.
func (s *Service) ListPendingReviews(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	return s.reports.ListPendingReviews(ctx, limit, offset)
}
