package patient

import (
	"context"
	"errors"
)

// Identifiers carries the patient identity fields of an inbound result
// message. Lab-supplied identifiers are untrusted; every strategy pairs
// an identifier with the date of birth.
type Identifiers struct {
	MRN        string // lab's copy of the clinic's internal id
	PubID      string // public patient id
	ExternalID string // id assigned by the external system
	LastName   string
	FirstName  string
	Sex        string
	BirthDate  string // YYYY-MM-DD; empty when the lab sent none
}

// Resolver finds an existing patient for an inbound message. Strategies
// run in strict priority order and stop at the first hit:
//
//  1. MRN + date of birth
//  2. public patient id + date of birth
//  3. external-system id + date of birth
//  4. last name + first name + date of birth + sex first-letter,
//     only when all four fields are present
//
// No fuzzy matching. A miss at all four stages is not an error.
type Resolver struct {
	patients Repository
}

func NewResolver(patients Repository) *Resolver {
	return &Resolver{patients: patients}
}

// Resolve returns the matched patient, or (nil, nil) when no strategy
// matched. A non-nil error is a repository failure, never a miss.
func (r *Resolver) Resolve(ctx context.Context, ids Identifiers) (*Patient, error) {
	dob, ok := ParseBirthDate(ids.BirthDate)
	if !ok {
		// Every strategy requires a date of birth.
		return nil, nil
	}

	if ids.MRN != "" {
		p, err := r.patients.FindByMRN(ctx, ids.MRN, dob)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if ids.PubID != "" {
		p, err := r.patients.FindByPubID(ctx, ids.PubID, dob)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if ids.ExternalID != "" {
		p, err := r.patients.FindByExternalID(ctx, ids.ExternalID, dob)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if ids.LastName != "" && ids.FirstName != "" && ids.Sex != "" {
		p, err := r.patients.FindByDemographics(ctx, ids.LastName, ids.FirstName, dob, ids.Sex[:1])
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return nil, nil
}
