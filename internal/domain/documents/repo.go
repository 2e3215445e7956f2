package documents

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Document, error)
}
