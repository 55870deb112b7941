package report

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Status     Status
	Priority   Priority
	ReporterID *uuid.UUID
}

// Repository is the persistence boundary for reports. Update must apply the
// optimistic concurrency check against Report.VersionID and return ErrConflict
// when the stored row has moved on.
type Repository interface {
	Create(ctx context.Context, rep *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	Update(ctx context.Context, rep *Report) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Report, int, error)
	ListPendingReviews(ctx context.Context, limit, offset int) ([]*Report, int, error)
	ListAll(ctx context.Context) ([]*Report, error)
}
