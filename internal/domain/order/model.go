package order

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. The reconciliation engine only ever writes the terminal
// states; the earlier ones belong to order entry and review workflows.
const (
	StatusIncomplete = "i" // entered, not yet transmitted
	StatusSubmitted  = "s" // transmitted to the lab
	StatusReviewed   = "v" // results reviewed by a clinician
	StatusNotified   = "n" // patient notified
	StatusFinal      = "z" // all reports final/corrected
	StatusCancelled  = "c" // cancelled by the lab
	StatusException  = "x" // a non-final report is present
)

// ItemSource records how an order item came to exist.
type ItemSource int

const (
	SourceOrdered ItemSource = 1 // ordered by the clinic
	SourceAdded   ItemSource = 2 // added by the lab, no parent test
	SourceReflex  ItemSource = 3 // reflex test triggered by another result
)

// Order maps to the lab_order table. The order number is the merge key:
// unique among active orders and orphan placeholders.
type Order struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	EncounterID      *uuid.UUID `db:"encounter_id" json:"encounter_id,omitempty"`
	OrderNumber      string     `db:"order_number" json:"order_number"`
	ControlID        *string    `db:"control_id" json:"control_id,omitempty"`
	LabID            string     `db:"lab_id" json:"lab_id"`
	FacilityCode     *string    `db:"facility_code" json:"facility_code,omitempty"`
	ProviderID       *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	ProviderUsername *string    `db:"provider_username" json:"provider_username,omitempty"`
	Status           string     `db:"status" json:"status"`
	ReviewedBy       *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	NotifiedBy       *string    `db:"notified_by" json:"notified_by,omitempty"`
	NotifiedPerson   *string    `db:"notified_person" json:"notified_person,omitempty"`
	ResultDocumentID *uuid.UUID `db:"result_document_id" json:"result_document_id,omitempty"`
	OrderedAt        *time.Time `db:"ordered_at" json:"ordered_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// TagPatientUnknown is stored as the orphan's patient name when the lab
// sent no usable name.
const TagPatientUnknown = "PATIENT UNKNOWN"

// Orphan maps to the lab_orphan table: a result bundle with no resolvable
// patient, held for manual linking. Retired by clearing the active flag,
// never deleted.
type Orphan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OrderNumber  string    `db:"order_number" json:"order_number"`
	ControlID    *string   `db:"control_id" json:"control_id,omitempty"`
	LabID        string    `db:"lab_id" json:"lab_id"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	ProviderName *string   `db:"provider_name" json:"provider_name,omitempty"`
	Active       bool      `db:"active" json:"active"`
	Raw          []byte    `db:"raw" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Item maps to the lab_order_item table: one ordered test/profile line.
// Sequence numbers are unique per order and always assigned above the
// current maximum.
type Item struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrderID          uuid.UUID  `db:"order_id" json:"order_id"`
	Seq              int        `db:"seq" json:"seq"`
	Code             string     `db:"code" json:"code"`
	Name             string     `db:"name" json:"name"`
	Source           ItemSource `db:"source" json:"source"`
	ReflexParentCode *string    `db:"reflex_parent_code" json:"reflex_parent_code,omitempty"`
}

// Report maps to the lab_result_report table: one report for one order
// item. The full report set of an order is replaced on every merge pass.
type Report struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrderID        uuid.UUID  `db:"order_id" json:"order_id"`
	ItemID         uuid.UUID  `db:"item_id" json:"item_id"`
	Seq            int        `db:"seq" json:"seq"`
	SpecimenNumber *string    `db:"specimen_number" json:"specimen_number,omitempty"`
	Status         string     `db:"status" json:"status"`
	CollectedAt    *time.Time `db:"collected_at" json:"collected_at,omitempty"`
	ReportedAt     *time.Time `db:"reported_at" json:"reported_at,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
}

// ResultValue maps to the lab_result_value table: one discrete observation
// within a report. Created fresh each merge pass.
type ResultValue struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ReportID       uuid.UUID `db:"report_id" json:"report_id"`
	Code           string    `db:"code" json:"code"`
	Text           string    `db:"text" json:"text"`
	Value          string    `db:"value" json:"value"`
	Units          *string   `db:"units" json:"units,omitempty"`
	ReferenceRange *string   `db:"reference_range" json:"reference_range,omitempty"`
	AbnormalFlag   string    `db:"abnormal_flag" json:"abnormal_flag"`
	Status         *string   `db:"status" json:"status,omitempty"`
	FacilityCode   *string   `db:"facility_code" json:"facility_code,omitempty"`
	Comments       *string   `db:"comments" json:"comments,omitempty"`
}

// InboundReport is one report from a parsed result message, the merge
// input for a single order item.
type InboundReport struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	ReflexParentCode string          `json:"reflex_parent_code,omitempty"`
	Status           string          `json:"status"`
	SpecimenNumber   string          `json:"specimen_number,omitempty"`
	CollectedAt      *time.Time      `json:"collected_at,omitempty"`
	ReportedAt       *time.Time      `json:"reported_at,omitempty"`
	Notes            []string        `json:"notes,omitempty"`
	Results          []InboundResult `json:"results"`
}

// InboundResult is one discrete observation within an inbound report.
type InboundResult struct {
	Code           string `json:"code"`
	Text           string `json:"text"`
	Value          string `json:"value"`
	Units          string `json:"units,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	AbnormalFlag   string `json:"abnormal_flag,omitempty"`
	Status         string `json:"status,omitempty"`
	FacilityCode   string `json:"facility_code,omitempty"`
	Comments       string `json:"comments,omitempty"`
}
