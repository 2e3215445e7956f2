package facility

import (
	"context"
	"fmt"
)

// Service keeps the processing-lab facility table in sync with the
// facility metadata carried on each result message. The upsert is a pure
// replace-by-code, safe to run repeatedly and in any order.
type Service struct {
	facilities Repository
}

func NewService(facilities Repository) *Service {
	return &Service{facilities: facilities}
}

func (s *Service) Sync(ctx context.Context, f *Facility) error {
	if f.Code == "" {
		return fmt.Errorf("facility code is required")
	}
	if f.Name == "" {
		f.Name = f.Code
	}
	if err := s.facilities.Upsert(ctx, f); err != nil {
		return fmt.Errorf("upsert facility %s: %w", f.Code, err)
	}
	return nil
}
