package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type mockOrderRepo struct {
	orders  map[uuid.UUID]*Order
	failOps bool
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

var errMockDown = errors.New("database unavailable")

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.failOps {
		return errMockDown
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) FindByNumberAndPatient(_ context.Context, number string, patientID uuid.UUID, labID string) (*Order, error) {
	if m.failOps {
		return nil, errMockDown
	}
	for _, o := range m.orders {
		if o.OrderNumber == number && o.PatientID == patientID && o.LabID == labID {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) FindByNumberAndControl(_ context.Context, number, controlID, labID string) (*Order, error) {
	if m.failOps {
		return nil, errMockDown
	}
	for _, o := range m.orders {
		if o.OrderNumber == number && o.ControlID != nil && *o.ControlID == controlID && o.LabID == labID {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order) error {
	if m.failOps {
		return errMockDown
	}
	o.UpdatedAt = time.Now().UTC()
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) NumberInUse(_ context.Context, number string) (bool, error) {
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

type mockOrphanRepo struct {
	orphans []*Orphan
}

func (m *mockOrphanRepo) Create(_ context.Context, o *Orphan) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now().UTC()
	m.orphans = append(m.orphans, o)
	return nil
}

func (m *mockOrphanRepo) NumberInUse(_ context.Context, number string) (bool, error) {
	for _, o := range m.orphans {
		if o.Active && o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

type mockItemRepo struct {
	items []*Item
}

func (m *mockItemRepo) Create(_ context.Context, it *Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	m.items = append(m.items, it)
	return nil
}

func (m *mockItemRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*Item, error) {
	var out []*Item
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockItemRepo) DeleteUnordered(_ context.Context, orderID uuid.UUID) error {
	kept := m.items[:0]
	for _, it := range m.items {
		if it.OrderID == orderID && it.Source != SourceOrdered {
			continue
		}
		kept = append(kept, it)
	}
	m.items = kept
	return nil
}

type mockReportRepo struct {
	reports    []*Report
	values     []*ResultValue
	failCreate bool
}

func (m *mockReportRepo) CreateReport(_ context.Context, rep *Report) error {
	if m.failCreate {
		return errMockDown
	}
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	m.reports = append(m.reports, rep)
	return nil
}

func (m *mockReportRepo) CreateValue(_ context.Context, v *ResultValue) error {
	if m.failCreate {
		return errMockDown
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.values = append(m.values, v)
	return nil
}

func (m *mockReportRepo) DeleteByOrder(_ context.Context, orderID uuid.UUID) error {
	var keptReports []*Report
	dropped := make(map[uuid.UUID]bool)
	for _, rep := range m.reports {
		if rep.OrderID == orderID {
			dropped[rep.ID] = true
			continue
		}
		keptReports = append(keptReports, rep)
	}
	m.reports = keptReports

	var keptValues []*ResultValue
	for _, v := range m.values {
		if dropped[v.ReportID] {
			continue
		}
		keptValues = append(keptValues, v)
	}
	m.values = keptValues
	return nil
}

type mockEncounterCreator struct {
	created int
	lastID  uuid.UUID
}

func (m *mockEncounterCreator) CreateSystemEncounter(_ context.Context, patientID uuid.UUID, _, _ *uuid.UUID, _ time.Time) (uuid.UUID, error) {
	if patientID == uuid.Nil {
		return uuid.Nil, errors.New("patient required")
	}
	m.created++
	m.lastID = uuid.New()
	return m.lastID, nil
}
