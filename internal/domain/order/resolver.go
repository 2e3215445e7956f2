package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Resolver locates the existing order a result message belongs to. A miss
// is not an error; it means a placeholder has to be synthesized.
type Resolver struct {
	orders Repository
}

func NewResolver(orders Repository) *Resolver {
	return &Resolver{orders: orders}
}

// Resolve tries the two lookup strategies in priority order:
//
//  1. order number + resolved patient + sending lab
//  2. order number + control identifier + sending lab
//
// The second strategy covers orders whose patient link was corrected after
// transmission. patientID may be uuid.Nil when patient resolution failed.
func (r *Resolver) Resolve(ctx context.Context, number, controlID, labID string, patientID uuid.UUID) (*Order, error) {
	if number == "" {
		return nil, nil
	}

	if patientID != uuid.Nil {
		ord, err := r.orders.FindByNumberAndPatient(ctx, number, patientID, labID)
		if err == nil {
			return ord, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("find order by number and patient: %w", err)
		}
	}

	if controlID != "" {
		ord, err := r.orders.FindByNumberAndControl(ctx, number, controlID, labID)
		if err == nil {
			return ord, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("find order by number and control: %w", err)
		}
	}

	return nil, nil
}
