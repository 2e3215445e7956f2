package audit

import "context"

type Repository interface {
	// Create appends one record. There is deliberately no update or
	// delete operation.
	Create(ctx context.Context, rec *Record) error
	ListByBatch(ctx context.Context, batchID string) ([]*Record, error)
}
