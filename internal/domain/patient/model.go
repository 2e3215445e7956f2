package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Only the identity fields the
// reconciliation engine matches on are carried here; full demographics
// belong to the registration system.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	MRN        string     `db:"mrn" json:"mrn"`
	PubID      *string    `db:"pub_id" json:"pub_id,omitempty"`
	ExternalID *string    `db:"external_id" json:"external_id,omitempty"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	MiddleName *string    `db:"middle_name" json:"middle_name,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex        *string    `db:"sex" json:"sex,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName returns "LAST, FIRST" for notification bodies and audit rows.
func (p *Patient) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.LastName + ", " + p.FirstName
}

// ParseBirthDate parses the YYYY-MM-DD birth date carried by inbound
// messages. Returns false for empty or malformed values.
func ParseBirthDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
