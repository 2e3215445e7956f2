package audit

import (
	"time"

	"github.com/google/uuid"
)

// Message dispositions recorded per processed result message.
const (
	DispositionMerged  = "merged"
	DispositionOrphan  = "orphan"
	DispositionSkipped = "skipped"
	DispositionAborted = "aborted"
)

// Record is one append-only lab_batch_audit row. Rows are never updated
// or deleted; the trail is the source of truth for what each run did.
type Record struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BatchID     string     `db:"batch_id" json:"batch_id"`
	MessageID   string     `db:"message_id" json:"message_id"`
	LabID       string     `db:"lab_id" json:"lab_id"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	OrphanID    *uuid.UUID `db:"orphan_id" json:"orphan_id,omitempty"`
	Disposition string     `db:"disposition" json:"disposition"`
	Detail      string     `db:"detail" json:"detail"`
	Operator    string     `db:"operator" json:"operator"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
