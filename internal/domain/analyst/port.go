package analyst

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Paginate(ctx context.Context, owner string, page, pageSize int) ([]*Analysis, error)
	Count(ctx context.Context, owner string) (int64, error)
}

// ReportStore archives a rendered report and returns where it can be fetched.
type ReportStore interface {
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}
