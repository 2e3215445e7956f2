package documents

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is used when the sending lab has no display name on file.
const DefaultCategory = "Lab Report"

// Document is one catalog row in lab_document, pointing at a file stored
// under the patient's directory in the document root.
type Document struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	OrderID   *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Category  string     `db:"category" json:"category"`
	Name      string     `db:"name" json:"name"`
	Path      string     `db:"path" json:"path"`
	MimeType  string     `db:"mime_type" json:"mime_type"`
	Size      int64      `db:"size" json:"size"`
	Hash      string     `db:"hash" json:"hash"` // sha-256, hex
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
