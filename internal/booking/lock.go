package booking

import (
	"slices"
	"sync"
)

// RoomLocker serialises bookings that touch the same room within one process.
type RoomLocker struct {
	mu    sync.Mutex
	rooms map[int64]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewRoomLocker returns an empty locker.
func NewRoomLocker() *RoomLocker {
	return &RoomLocker{rooms: make(map[int64]*roomLock)}
}

// Lock blocks until every room in ids is held and returns the release func.
// Rooms are taken in ascending id order so overlapping sets cannot deadlock.
func (l *RoomLocker) Lock(ids []int64) (unlock func()) {
	ids = uniqueSorted(ids)

	held := make([]*roomLock, 0, len(ids))
	for _, id := range ids {
		rl := l.acquire(id)
		rl.mu.Lock()
		held = append(held, rl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ids[i])
		}
	}
}

func (l *RoomLocker) acquire(id int64) *roomLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.rooms[id]
	if !ok {
		rl = &roomLock{}
		l.rooms[id] = rl
	}
	rl.refs++
	return rl
}

func (l *RoomLocker) release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl := l.rooms[id]
	rl.refs--
	if rl.refs == 0 {
		delete(l.rooms, id)
	}
}

// size is the number of rooms currently tracked.
func (l *RoomLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

// uniqueSorted returns a sorted copy of ids without repeats.
func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// unique drops repeats from ids, keeping first-seen order.
func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
