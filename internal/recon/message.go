package recon

import (
	"fmt"
	"strings"
	"time"

	"github.com/labrecon/labrecon/internal/domain/order"
	"github.com/labrecon/labrecon/internal/domain/patient"
)

// PatientInfo is the patient identity block of a result message.
type PatientInfo struct {
	MRN        string `json:"mrn,omitempty"`
	PubID      string `json:"pub_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	Sex        string `json:"sex,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"` // YYYY-MM-DD
}

// ProviderInfo identifies the ordering provider as the lab echoed it back.
type ProviderInfo struct {
	NPI       string `json:"npi,omitempty"`
	Username  string `json:"username,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// FacilityInfo is the performing-lab facility block of a result message.
type FacilityInfo struct {
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Director string `json:"director,omitempty"`
	NPI      string `json:"npi,omitempty"`
}

// EmbeddedDocument is one lab-rendered report carried inside the message.
// A message may carry several (result report, specimen labels, addenda).
type EmbeddedDocument struct {
	Content  []byte `json:"content"` // base64 in JSON
	MimeType string `json:"mime_type,omitempty"`
}

// InboundMessage is one parsed result message: everything the engine
// needs to reconcile a lab's report bundle against the clinical record.
type InboundMessage struct {
	MessageID   string                `json:"message_id"`
	LabID       string                `json:"lab_id"`
	OrderNumber string                `json:"order_number,omitempty"`
	ControlID   string                `json:"control_id,omitempty"`
	Patient     PatientInfo           `json:"patient"`
	Provider    ProviderInfo          `json:"provider,omitempty"`
	Facility    FacilityInfo          `json:"facility,omitempty"`
	OrderedAt   *time.Time            `json:"ordered_at,omitempty"`
	CollectedAt *time.Time            `json:"collected_at,omitempty"`
	Reports     []order.InboundReport `json:"reports"`
	Documents   []EmbeddedDocument    `json:"documents,omitempty"`
	Raw         []byte                `json:"-"`
}

// Validate rejects messages the engine cannot act on. A failure here skips
// the message; it is never fatal to the batch.
func (m *InboundMessage) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("message id is required")
	}
	if m.LabID == "" {
		return fmt.Errorf("lab id is required")
	}
	if m.OrderNumber == "" && m.ControlID == "" {
		return fmt.Errorf("order number or control id is required")
	}
	p := m.Patient
	if p.MRN == "" && p.PubID == "" && p.ExternalID == "" && p.LastName == "" {
		return fmt.Errorf("a patient identifier or last name is required")
	}
	return nil
}

// Identifiers maps the message's patient block to the resolver's input.
func (m *InboundMessage) Identifiers() patient.Identifiers {
	return patient.Identifiers{
		MRN:        m.Patient.MRN,
		PubID:      m.Patient.PubID,
		ExternalID: m.Patient.ExternalID,
		LastName:   m.Patient.LastName,
		FirstName:  m.Patient.FirstName,
		Sex:        m.Patient.Sex,
		BirthDate:  m.Patient.BirthDate,
	}
}

// PatientDisplayName renders "LAST, FIRST" from whatever name parts the
// lab sent, or empty when it sent none.
func (m *InboundMessage) PatientDisplayName() string {
	last := strings.TrimSpace(m.Patient.LastName)
	first := strings.TrimSpace(m.Patient.FirstName)
	switch {
	case last == "" && first == "":
		return ""
	case first == "":
		return strings.ToUpper(last)
	default:
		return strings.ToUpper(last) + ", " + strings.ToUpper(first)
	}
}

// ProviderDisplayName renders the ordering provider's name for orphan rows.
func (m *InboundMessage) ProviderDisplayName() string {
	last := strings.TrimSpace(m.Provider.LastName)
	first := strings.TrimSpace(m.Provider.FirstName)
	switch {
	case last == "" && first == "":
		return ""
	case first == "":
		return strings.ToUpper(last)
	default:
		return strings.ToUpper(last) + ", " + strings.ToUpper(first)
	}
}
