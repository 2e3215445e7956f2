package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Report status classes derived from HL7 OBR-25 result status codes and
// their word forms.
type statusClass int

const (
	classFinal statusClass = iota
	classCorrected
	classCancelled
	classOther // preliminary, partial, anything unrecognized
)

func classifyReportStatus(s string) statusClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "final":
		return classFinal
	case "c", "corrected", "correction":
		return classCorrected
	case "x", "cancelled", "canceled", "cancelled by lab":
		return classCancelled
	default:
		return classOther
	}
}

// RollupStatus derives the order status from the statuses of all reports
// in the current merge pass. Cancellation dominates everything else; any
// report that is neither final nor corrected degrades the order to the
// exception state. No reports at all counts as final.
func RollupStatus(reportStatuses []string) string {
	out := StatusFinal
	for _, s := range reportStatuses {
		switch classifyReportStatus(s) {
		case classCancelled:
			return StatusCancelled
		case classFinal, classCorrected:
		default:
			out = StatusException
		}
	}
	return out
}

// StatusManager writes post-merge order state. Every status transition
// also clears the review and notification fields so previously handled
// orders surface for review again after new results land.
type StatusManager struct {
	orders Repository
}

func NewStatusManager(orders Repository) *StatusManager {
	return &StatusManager{orders: orders}
}

func (m *StatusManager) Apply(ctx context.Context, ord *Order, status string) error {
	ord.Status = status
	ord.ReviewedBy = nil
	ord.NotifiedBy = nil
	ord.NotifiedPerson = nil
	if err := m.orders.Update(ctx, ord); err != nil {
		return fmt.Errorf("update order %s status: %w", ord.OrderNumber, err)
	}
	return nil
}

// AttachResultDocument records the first published result document on the
// order. Later documents for the same order leave the reference alone.
func (m *StatusManager) AttachResultDocument(ctx context.Context, ord *Order, docID uuid.UUID) error {
	if ord.ResultDocumentID != nil {
		return nil
	}
	ord.ResultDocumentID = &docID
	if err := m.orders.Update(ctx, ord); err != nil {
		return fmt.Errorf("attach document to order %s: %w", ord.OrderNumber, err)
	}
	return nil
}
