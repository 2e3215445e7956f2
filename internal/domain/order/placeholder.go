package order

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EncounterCreator synthesizes the visit a placeholder order hangs off.
type EncounterCreator interface {
	CreateSystemEncounter(ctx context.Context, patientID uuid.UUID, providerID, facilityID *uuid.UUID, date time.Time) (uuid.UUID, error)
}

// NumberGenerator produces candidate order numbers for placeholders.
type NumberGenerator func() string

// DefaultNumberGenerator yields "LAB" + yymmdd + a six-digit random tail.
// Collisions are possible and handled by the factory's retry loop.
func DefaultNumberGenerator() string {
	u := uuid.New()
	tail := binary.BigEndian.Uint32(u[0:4]) % 1000000
	return fmt.Sprintf("LAB%s%06d", time.Now().UTC().Format("060102"), tail)
}

// PlaceholderRequest carries everything the factory needs from a result
// message that matched no existing order.
type PlaceholderRequest struct {
	PatientID        uuid.UUID
	OrderNumber      string
	ControlID        string
	LabID            string
	FacilityCode     string
	ProviderID       *uuid.UUID
	FacilityID       *uuid.UUID
	ProviderUsername string
	PatientName      string
	ProviderName     string
	OrderedAt        *time.Time
	CollectedAt      *time.Time
	Raw              []byte
}

// PlaceholderFactory synthesizes orders for unsolicited results and orphan
// rows for results with no resolvable patient. Either way the chosen order
// number is guaranteed free across both the order and orphan tables.
type PlaceholderFactory struct {
	orders     Repository
	orphans    OrphanRepository
	encounters EncounterCreator
	generate   NumberGenerator
}

func NewPlaceholderFactory(orders Repository, orphans OrphanRepository, encounters EncounterCreator) *PlaceholderFactory {
	return &PlaceholderFactory{
		orders:     orders,
		orphans:    orphans,
		encounters: encounters,
		generate:   DefaultNumberGenerator,
	}
}

// freeNumber returns candidate if it is unused, otherwise generates fresh
// numbers until one is free.
func (f *PlaceholderFactory) freeNumber(ctx context.Context, candidate string) (string, error) {
	number := candidate
	if number == "" {
		number = f.generate()
	}
	for {
		inOrders, err := f.orders.NumberInUse(ctx, number)
		if err != nil {
			return "", fmt.Errorf("check order number %s: %w", number, err)
		}
		inOrphans, err := f.orphans.NumberInUse(ctx, number)
		if err != nil {
			return "", fmt.Errorf("check orphan number %s: %w", number, err)
		}
		if !inOrders && !inOrphans {
			return number, nil
		}
		number = f.generate()
	}
}

// CreateOrder synthesizes an encounter and an order for a resolved patient
// whose results arrived without a matching order.
func (f *PlaceholderFactory) CreateOrder(ctx context.Context, req PlaceholderRequest) (*Order, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("placeholder order requires a patient")
	}

	number, err := f.freeNumber(ctx, req.OrderNumber)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	switch {
	case req.OrderedAt != nil:
		date = *req.OrderedAt
	case req.CollectedAt != nil:
		date = *req.CollectedAt
	}

	encID, err := f.encounters.CreateSystemEncounter(ctx, req.PatientID, req.ProviderID, req.FacilityID, date)
	if err != nil {
		return nil, fmt.Errorf("create placeholder encounter: %w", err)
	}

	ord := &Order{
		PatientID:   req.PatientID,
		EncounterID: &encID,
		OrderNumber: number,
		LabID:       req.LabID,
		Status:      StatusSubmitted,
		OrderedAt:   &date,
	}
	if req.ControlID != "" {
		ord.ControlID = &req.ControlID
	}
	if req.FacilityCode != "" {
		ord.FacilityCode = &req.FacilityCode
	}
	if req.ProviderID != nil {
		ord.ProviderID = req.ProviderID
	}
	if req.ProviderUsername != "" {
		ord.ProviderUsername = &req.ProviderUsername
	}
	if err := f.orders.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("create placeholder order %s: %w", number, err)
	}
	return ord, nil
}

// CreateOrphan stores an unmatchable result bundle for manual linking.
// Nothing is merged and no encounter is created.
func (f *PlaceholderFactory) CreateOrphan(ctx context.Context, req PlaceholderRequest) (*Orphan, error) {
	number, err := f.freeNumber(ctx, req.OrderNumber)
	if err != nil {
		return nil, err
	}

	name := req.PatientName
	if name == "" {
		name = TagPatientUnknown
	}
	orphan := &Orphan{
		OrderNumber: number,
		LabID:       req.LabID,
		PatientName: name,
		Active:      true,
		Raw:         req.Raw,
	}
	if req.ControlID != "" {
		orphan.ControlID = &req.ControlID
	}
	if req.ProviderName != "" {
		orphan.ProviderName = &req.ProviderName
	}
	if err := f.orphans.Create(ctx, orphan); err != nil {
		return nil, fmt.Errorf("create orphan %s: %w", number, err)
	}
	return orphan, nil
}
