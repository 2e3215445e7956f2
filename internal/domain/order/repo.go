package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByNumberAndPatient matches an order by its number, owning patient
	// and sending lab. Returns ErrNotFound on a miss.
	FindByNumberAndPatient(ctx context.Context, number string, patientID uuid.UUID, labID string) (*Order, error)
	// FindByNumberAndControl matches by number plus the lab-assigned
	// control/accession identifier. Returns ErrNotFound on a miss.
	FindByNumberAndControl(ctx context.Context, number, controlID, labID string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	NumberInUse(ctx context.Context, number string) (bool, error)
}

type OrphanRepository interface {
	Create(ctx context.Context, o *Orphan) error
	// NumberInUse considers active orphans only; a retired orphan frees
	// its number.
	NumberInUse(ctx context.Context, number string) (bool, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	// ListByOrder returns the order's items in sequence order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Item, error)
	// DeleteUnordered removes lab-added and reflex items, leaving only
	// what the clinic originally ordered.
	DeleteUnordered(ctx context.Context, orderID uuid.UUID) error
}

type ReportRepository interface {
	CreateReport(ctx context.Context, rep *Report) error
	CreateValue(ctx context.Context, v *ResultValue) error
	// DeleteByOrder removes every report for the order along with its
	// values.
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}
