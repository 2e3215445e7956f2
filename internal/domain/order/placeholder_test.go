package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestCreateOrderSynthesizesEncounter(t *testing.T) {
	orders := newMockOrderRepo()
	enc := &mockEncounterCreator{}
	f := NewPlaceholderFactory(orders, &mockOrphanRepo{}, enc)

	patientID := uuid.New()
	ord, err := f.CreateOrder(context.Background(), PlaceholderRequest{
		PatientID:   patientID,
		OrderNumber: "ORD-77",
		ControlID:   "ACC-77",
		LabID:       "labcorp",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if enc.created != 1 {
		t.Fatalf("encounters created = %d, want 1", enc.created)
	}
	if ord.EncounterID == nil || *ord.EncounterID != enc.lastID {
		t.Error("order must reference the synthesized encounter")
	}
	if ord.OrderNumber != "ORD-77" {
		t.Errorf("order number = %q, want lab-supplied number kept", ord.OrderNumber)
	}
	if ord.Status != StatusSubmitted {
		t.Errorf("status = %q, want %q", ord.Status, StatusSubmitted)
	}
	if ord.PatientID != patientID {
		t.Error("order must belong to the resolved patient")
	}
}

func TestCreateOrderRetriesOnNumberCollision(t *testing.T) {
	orders := newMockOrderRepo()
	taken := &Order{PatientID: uuid.New(), OrderNumber: "ORD-77", LabID: "quest"}
	if err := orders.Create(context.Background(), taken); err != nil {
		t.Fatalf("Create: %v", err)
	}

	f := NewPlaceholderFactory(orders, &mockOrphanRepo{}, &mockEncounterCreator{})
	calls := 0
	f.generate = func() string {
		calls++
		if calls == 1 {
			return "ORD-77" // collides again, forcing a second round
		}
		return "LAB-FRESH"
	}

	ord, err := f.CreateOrder(context.Background(), PlaceholderRequest{
		PatientID:   uuid.New(),
		OrderNumber: "ORD-77",
		LabID:       "quest",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if ord.OrderNumber != "LAB-FRESH" {
		t.Errorf("order number = %q, want regenerated free number", ord.OrderNumber)
	}
}

func TestCreateOrderNumberAvoidsOrphans(t *testing.T) {
	orders := newMockOrderRepo()
	orphans := &mockOrphanRepo{}
	if err := orphans.Create(context.Background(), &Orphan{OrderNumber: "ORD-88", LabID: "quest", Active: true}); err != nil {
		t.Fatalf("Create orphan: %v", err)
	}

	f := NewPlaceholderFactory(orders, orphans, &mockEncounterCreator{})
	f.generate = func() string { return "LAB-FREE" }

	ord, err := f.CreateOrder(context.Background(), PlaceholderRequest{
		PatientID:   uuid.New(),
		OrderNumber: "ORD-88",
		LabID:       "quest",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if ord.OrderNumber != "LAB-FREE" {
		t.Error("numbers held by active orphans must not be reused")
	}
}

func TestCreateOrderRequiresPatient(t *testing.T) {
	f := NewPlaceholderFactory(newMockOrderRepo(), &mockOrphanRepo{}, &mockEncounterCreator{})
	if _, err := f.CreateOrder(context.Background(), PlaceholderRequest{OrderNumber: "ORD-1", LabID: "quest"}); err == nil {
		t.Fatal("expected error without a patient")
	}
}

func TestCreateOrphanTagsUnknownPatient(t *testing.T) {
	orphans := &mockOrphanRepo{}
	enc := &mockEncounterCreator{}
	f := NewPlaceholderFactory(newMockOrderRepo(), orphans, enc)

	orphan, err := f.CreateOrphan(context.Background(), PlaceholderRequest{
		OrderNumber: "ORD-55",
		LabID:       "quest",
		Raw:         []byte(`{"order_number":"ORD-55"}`),
	})
	if err != nil {
		t.Fatalf("CreateOrphan: %v", err)
	}

	if orphan.PatientName != TagPatientUnknown {
		t.Errorf("patient name = %q, want %q", orphan.PatientName, TagPatientUnknown)
	}
	if !orphan.Active {
		t.Error("new orphan must be active")
	}
	if len(orphan.Raw) == 0 {
		t.Error("orphan must keep the raw message for manual linking")
	}
	if enc.created != 0 {
		t.Error("orphan creation must not synthesize an encounter")
	}
}

func TestCreateOrphanKeepsSuppliedName(t *testing.T) {
	orphans := &mockOrphanRepo{}
	f := NewPlaceholderFactory(newMockOrderRepo(), orphans, &mockEncounterCreator{})

	orphan, err := f.CreateOrphan(context.Background(), PlaceholderRequest{
		OrderNumber:  "ORD-56",
		LabID:        "quest",
		PatientName:  "DOE, JANE",
		ProviderName: "WELBY, MARCUS",
	})
	if err != nil {
		t.Fatalf("CreateOrphan: %v", err)
	}
	if orphan.PatientName != "DOE, JANE" {
		t.Errorf("patient name = %q, want lab-supplied name kept", orphan.PatientName)
	}
	if orphan.ProviderName == nil || *orphan.ProviderName != "WELBY, MARCUS" {
		t.Error("provider name must be kept")
	}
}
