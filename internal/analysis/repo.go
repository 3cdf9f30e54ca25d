package analysis

import "context"

// Repo defines persistence for the analysis history audit log.
type Repo interface {
	Create(ctx context.Context, record Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
}
