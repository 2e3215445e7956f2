package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	encounters Repository
}

func NewService(encounters Repository) *Service {
	return &Service{encounters: encounters}
}

// CreateSystemEncounter synthesizes a system-authored encounter for an
// order that arrived with results but no clinic visit on record. Dated
// from the order's original date when the lab echoed one back, otherwise
// from the specimen collection date.
func (s *Service) CreateSystemEncounter(ctx context.Context, patientID uuid.UUID, providerID, facilityID *uuid.UUID, date time.Time) (uuid.UUID, error) {
	if patientID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("patient_id is required")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	e := &Encounter{
		PatientID:    patientID,
		ProviderID:   providerID,
		FacilityID:   facilityID,
		Date:         date,
		Reason:       SystemEncounterReason,
		SystemAuthor: true,
	}
	if err := s.encounters.Create(ctx, e); err != nil {
		return uuid.Nil, fmt.Errorf("create encounter: %w", err)
	}
	return e.ID, nil
}
