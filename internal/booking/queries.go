package booking

import (
	"context"
	"time"

	"conferent-backend/internal/model"
)

// Get returns the assembled view of rent id.
func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	rent, err := s.store.GetRent(ctx, id)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, s.store, rent)
}

// Exists reports whether rent id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.ExistsRent(ctx, id)
}

// List returns every rent, latest start first.
func (s *Service) List(ctx context.Context) ([]View, error) {
	return s.views(ctx)(s.store.ListRents(ctx))
}

func (s *Service) ListByCreator(ctx context.Context, creatorID int64) ([]View, error) {
	return s.views(ctx)(s.store.ListRentsByCreator(ctx, creatorID))
}

// ListByDateRange returns the rents lying entirely inside [from, to],
// earliest first.
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]View, error) {
	if err := (Interval{Start: from, End: to}).Validate(); err != nil {
		return nil, err
	}
	return s.views(ctx)(s.store.ListRentsByDateRange(ctx, from, to))
}

// ListUpcoming returns the rents starting after the current time.
func (s *Service) ListUpcoming(ctx context.Context) ([]View, error) {
	return s.views(ctx)(s.store.ListUpcomingRents(ctx, s.clock.Now()))
}

func (s *Service) SearchByPurpose(ctx context.Context, purpose string) ([]View, error) {
	return s.views(ctx)(s.store.SearchRentsByPurpose(ctx, purpose))
}

func (s *Service) ListByRoom(ctx context.Context, roomID int64) ([]View, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.views(ctx)(s.store.ListRentsByRoom(ctx, roomID))
}

// AvailableRooms returns the rooms with no rent overlapping [start, end).
func (s *Service) AvailableRooms(ctx context.Context, start, end time.Time) ([]model.Room, error) {
	if err := (Interval{Start: start, End: end}).Validate(); err != nil {
		return nil, err
	}
	return s.store.ListAvailableRooms(ctx, start, end)
}

// views assembles a query result, passing its error through.
func (s *Service) views(ctx context.Context) func([]model.Rent, error) ([]View, error) {
	return func(rents []model.Rent, err error) ([]View, error) {
		if err != nil {
			return nil, err
		}
		out := make([]View, 0, len(rents))
		for i := range rents {
			v, err := assemble(ctx, s.store, &rents[i])
			if err != nil {
				return nil, err
			}
			out = append(out, *v)
		}
		return out, nil
	}
}
