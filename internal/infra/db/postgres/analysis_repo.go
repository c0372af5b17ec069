package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/genefit/internal/domain/analyst"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO dna_analyses
  (id, owner_id, kind, status, sample_count, species, result_text, error_text, report_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status=EXCLUDED.status,
  species=EXCLUDED.species,
  result_text=EXCLUDED.result_text,
  error_text=EXCLUDED.error_text,
  report_url=EXCLUDED.report_url;
`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.OwnerID), a.Kind, a.Status, a.SampleCount,
		stringOrDash(a.Species), a.Result, a.Error, stringOrDash(a.ReportURL), createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, owner string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, owner_id, kind, status, sample_count, species, result_text, error_text, report_url, created_at
FROM dna_analyses
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, owner, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Kind, &a.Status, &a.SampleCount,
			&a.Species, &a.Result, &a.Error, &a.ReportURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Species = dashToEmpty(a.Species)
		a.ReportURL = dashToEmpty(a.ReportURL)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Count(ctx context.Context, owner string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dna_analyses WHERE owner_id=$1`, owner).Scan(&n)
	return n, err
}
