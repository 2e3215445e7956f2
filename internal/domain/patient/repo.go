package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that matched no patient.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	FindByMRN(ctx context.Context, mrn string, birthDate time.Time) (*Patient, error)
	FindByPubID(ctx context.Context, pubID string, birthDate time.Time) (*Patient, error)
	FindByExternalID(ctx context.Context, externalID string, birthDate time.Time) (*Patient, error)
	FindByDemographics(ctx context.Context, lastName, firstName string, birthDate time.Time, sexInitial string) (*Patient, error)
}
