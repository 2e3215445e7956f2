package facility

import "context"

type Repository interface {
	// Upsert replaces the facility row matching f.Code, creating it if absent.
	Upsert(ctx context.Context, f *Facility) error
	GetByCode(ctx context.Context, code string) (*Facility, error)
}
