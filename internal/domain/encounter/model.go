package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter maps to the encounter table.
type Encounter struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID   *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	FacilityID   *uuid.UUID `db:"facility_id" json:"facility_id,omitempty"`
	Date         time.Time  `db:"encounter_date" json:"encounter_date"`
	Reason       string     `db:"reason" json:"reason"`
	SystemAuthor bool       `db:"system_author" json:"system_author"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SystemEncounterReason marks encounters synthesized by the result engine
// rather than entered by clinic staff.
const SystemEncounterReason = "Generated for incoming lab results"
