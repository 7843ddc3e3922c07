package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferent-backend/internal/model"
)

// memFinder answers FindConflicting from an in-memory list of bookings.
type memFinder struct {
	bookings []memBooking
	err      error
	calls    []int64
}

type memBooking struct {
	rentID int64
	roomID int64
	span   Interval
}

func (f *memFinder) FindConflicting(_ context.Context, roomID int64, start, end time.Time) ([]model.RoomRent, error) {
	f.calls = append(f.calls, roomID)
	if f.err != nil {
		return nil, f.err
	}
	var out []model.RoomRent
	for _, b := range f.bookings {
		if b.roomID == roomID && b.span.Overlaps(Interval{Start: start, End: end}) {
			out = append(out, model.RoomRent{RoomID: roomID, RentID: b.rentID})
		}
	}
	return out, nil
}

func TestHasConflict(t *testing.T) {
	h := func(hour int) time.Time { return time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC) }
	finder := &memFinder{bookings: []memBooking{
		{rentID: 10, roomID: 1, span: Interval{Start: h(14), End: h(16)}},
		{rentID: 11, roomID: 2, span: Interval{Start: h(9), End: h(10)}},
	}}
	self := int64(10)
	other := int64(99)

	testCases := []struct {
		name    string
		rooms   []int64
		start   time.Time
		end     time.Time
		exclude *int64
		want    bool
	}{
		{"overlap on room 1", []int64{1}, h(15), h(17), nil, true},
		{"touching boundary", []int64{1}, h(16), h(17), nil, false},
		{"other room is free", []int64{2}, h(15), h(17), nil, false},
		{"any room conflicting is enough", []int64{2, 1}, h(15), h(17), nil, true},
		{"excluding own rent", []int64{1}, h(14), h(16), &self, false},
		{"excluding another rent", []int64{1}, h(14), h(16), &other, true},
		{"unknown room", []int64{42}, h(14), h(16), nil, false},
		{"no rooms", nil, h(14), h(16), nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HasConflict(context.Background(), finder, tc.rooms, tc.start, tc.end, tc.exclude)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasConflict_StopsAtFirstConflictingRoom(t *testing.T) {
	h := func(hour int) time.Time { return time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC) }
	finder := &memFinder{bookings: []memBooking{
		{rentID: 1, roomID: 1, span: Interval{Start: h(8), End: h(18)}},
	}}

	got, err := HasConflict(context.Background(), finder, []int64{1, 2, 3}, h(9), h(10), nil)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, []int64{1}, finder.calls)
}

func TestHasConflict_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	finder := &memFinder{err: boom}

	_, err := HasConflict(context.Background(), finder, []int64{1}, time.Now(), time.Now().Add(time.Hour), nil)
	assert.ErrorIs(t, err, boom)
}
