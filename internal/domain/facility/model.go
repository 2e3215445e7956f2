package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility maps to the lab_facility table: a processing-lab site
// referenced by incoming results. Keyed by the lab-assigned code.
type Facility struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	City      *string   `db:"city" json:"city,omitempty"`
	State     *string   `db:"state" json:"state,omitempty"`
	Zip       *string   `db:"zip" json:"zip,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Director  *string   `db:"director" json:"director,omitempty"`
	NPI       *string   `db:"npi" json:"npi,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
