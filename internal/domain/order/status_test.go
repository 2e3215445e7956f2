package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRollupStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all final", []string{"F", "final", "F"}, StatusFinal},
		{"corrected counts as final", []string{"F", "C"}, StatusFinal},
		{"preliminary degrades", []string{"F", "P", "F"}, StatusException},
		{"unknown degrades", []string{"F", "pending"}, StatusException},
		{"cancellation dominates", []string{"P", "X", "F"}, StatusCancelled},
		{"cancellation word form", []string{"cancelled by lab"}, StatusCancelled},
		{"no reports", nil, StatusFinal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RollupStatus(c.statuses); got != c.want {
				t.Errorf("RollupStatus(%v) = %q, want %q", c.statuses, got, c.want)
			}
		})
	}
}

func TestApplyClearsReviewState(t *testing.T) {
	repo := newMockOrderRepo()
	reviewer := "dr.jones"
	ord := &Order{Status: StatusReviewed, ReviewedBy: &reviewer, NotifiedBy: &reviewer, NotifiedPerson: &reviewer}
	if err := repo.Create(context.Background(), ord); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mgr := NewStatusManager(repo)
	if err := mgr.Apply(context.Background(), ord, StatusFinal); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got := repo.orders[ord.ID]
	if got.Status != StatusFinal {
		t.Errorf("status = %q, want %q", got.Status, StatusFinal)
	}
	if got.ReviewedBy != nil || got.NotifiedBy != nil || got.NotifiedPerson != nil {
		t.Error("review and notification fields must be cleared on new results")
	}
}

func TestAttachResultDocumentKeepsFirst(t *testing.T) {
	repo := newMockOrderRepo()
	ord := &Order{Status: StatusFinal}
	if err := repo.Create(context.Background(), ord); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mgr := NewStatusManager(repo)
	first := uuid.New()
	if err := mgr.AttachResultDocument(context.Background(), ord, first); err != nil {
		t.Fatalf("AttachResultDocument: %v", err)
	}
	if err := mgr.AttachResultDocument(context.Background(), ord, uuid.New()); err != nil {
		t.Fatalf("AttachResultDocument: %v", err)
	}

	if ord.ResultDocumentID == nil || *ord.ResultDocumentID != first {
		t.Error("order must keep the first published document")
	}
}
