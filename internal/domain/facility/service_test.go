package facility

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	byCode map[string]*Facility
}

func newMockRepo() *mockRepo {
	return &mockRepo{byCode: make(map[string]*Facility)}
}

func (m *mockRepo) Upsert(_ context.Context, f *Facility) error {
	if existing, ok := m.byCode[f.Code]; ok {
		f.ID = existing.ID
	} else if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	m.byCode[f.Code] = f
	return nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Facility, error) {
	return m.byCode[code], nil
}

func TestSyncCreatesAndReplaces(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first := &Facility{Code: "QD-01", Name: "Quest West"}
	if err := svc.Sync(context.Background(), first); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	director := "Dr. House"
	second := &Facility{Code: "QD-01", Name: "Quest West Renamed", Director: &director}
	if err := svc.Sync(context.Background(), second); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := repo.byCode["QD-01"]
	if got.Name != "Quest West Renamed" {
		t.Errorf("name = %q, want replaced value", got.Name)
	}
	if got.ID != first.ID {
		t.Error("upsert must keep the original row identity")
	}
}

func TestSyncRequiresCode(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Sync(context.Background(), &Facility{Name: "No Code Lab"}); err == nil {
		t.Fatal("expected error for missing code")
	}
}

func TestSyncDefaultsNameToCode(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if err := svc.Sync(context.Background(), &Facility{Code: "LC-9"}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if repo.byCode["LC-9"].Name != "LC-9" {
		t.Errorf("name = %q, want code fallback", repo.byCode["LC-9"].Name)
	}
}
