package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportCols = `id, reporter_id, patient_name, medicine, side_effects, status, priority,
	triage, doctor_review, review_history, comments, version_id, created_at, updated_at`

// PGRepository stores reports in Postgres. Structured fields live in JSONB
// columns; pgx's json codec encodes and scans them directly.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	rep.VersionID = 1

	_, err := r.pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, patient_name, medicine, side_effects, status, priority,
			triage, doctor_review, review_history, comments, version_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rep.ID, rep.ReporterID, rep.PatientName, rep.Medicine, rep.SideEffects, rep.Status, rep.Priority,
		rep.Triage, rep.DoctorReview, rep.ReviewHistory, rep.Comments, rep.VersionID, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportCols+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return rep, nil
}

// Update writes the report guarded by its version. A zero-row update means the
// version moved (conflict) or the row is gone; we tell the two apart with an
// existence probe so callers get the right sentinel.
func (r *PGRepository) Update(ctx context.Context, rep *Report) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reports
		SET patient_name = $2, medicine = $3, side_effects = $4, status = $5, priority = $6,
			triage = $7, doctor_review = $8, review_history = $9, comments = $10,
			version_id = version_id + 1, updated_at = $11
		WHERE id = $1 AND version_id = $12`,
		rep.ID, rep.PatientName, rep.Medicine, rep.SideEffects, rep.Status, rep.Priority,
		rep.Triage, rep.DoctorReview, rep.ReviewHistory, rep.Comments, rep.UpdatedAt, rep.VersionID)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, rep.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check report existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	rep.VersionID++
	return nil
}

func (r *PGRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Report, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `SELECT `+reportCols+` FROM reports`+where+
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports, err := collectReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *PGRepository) ListPendingReviews(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	const where = ` WHERE doctor_review->>'state' = 'requested'`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending reviews: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+reportCols+` FROM reports`+where+
		` ORDER BY (doctor_review->>'requested_at')::timestamptz DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending reviews: %w", err)
	}
	defer rows.Close()

	reports, err := collectReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *PGRepository) ListAll(ctx context.Context) ([]*Report, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportCols+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

func buildFilter(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.ReporterID != nil {
		args = append(args, *f.ReporterID)
		conds = append(conds, fmt.Sprintf("reporter_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collectReports(rows pgx.Rows) ([]*Report, error) {
	var reports []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(
		&rep.ID, &rep.ReporterID, &rep.PatientName, &rep.Medicine, &rep.SideEffects,
		&rep.Status, &rep.Priority, &rep.Triage, &rep.DoctorReview, &rep.ReviewHistory,
		&rep.Comments, &rep.VersionID, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
