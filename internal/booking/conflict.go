package booking

import (
	"context"
	"fmt"
	"time"

	"conferent-backend/internal/model"
)

// ConflictFinder fetches the room links whose rent overlaps [start, end).
// store.Store satisfies it.
type ConflictFinder interface {
	FindConflicting(ctx context.Context, roomID int64, start, end time.Time) ([]model.RoomRent, error)
}

// HasConflict reports whether any of roomIDs is booked during [start, end).
// Links of excludeRentID are ignored so a rent never conflicts with itself.
// Unknown rooms have no links and therefore never conflict.
func HasConflict(ctx context.Context, finder ConflictFinder, roomIDs []int64, start, end time.Time, excludeRentID *int64) (bool, error) {
	for _, roomID := range roomIDs {
		links, err := finder.FindConflicting(ctx, roomID, start, end)
		if err != nil {
			return false, fmt.Errorf("failed to check room %d: %w", roomID, err)
		}
		for _, link := range links {
			if excludeRentID != nil && link.RentID == *excludeRentID {
				continue
			}
			return true, nil
		}
	}
	return false, nil
}
