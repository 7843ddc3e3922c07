// Package reminder notifies participants shortly before their rent starts.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"conferent-backend/internal/clock"
	"conferent-backend/internal/model"
)

// Store is the read side the reminder loop needs.
type Store interface {
	ListRentsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Rent, error)
	ListRoomRentsByRent(ctx context.Context, rentID int64) ([]model.RoomRent, error)
	ListInvitesForRent(ctx context.Context, rentID int64) ([]model.UserInvite, error)
}

// Notifier receives one reminder per participant and room.
type Notifier interface {
	NotifyReminder(userID int64, roomName string, start time.Time)
}

// Service periodically reminds the creator and the accepted invitees of
// every rent starting within the lead time.
type Service struct {
	store    Store
	clock    clock.Clock
	notifier Notifier
	interval time.Duration
	lead     time.Duration
	sent     *cache.Cache
}

// NewService creates a reminder loop ticking every interval.
func NewService(s Store, clk clock.Clock, n Notifier, interval, lead time.Duration) *Service {
	return &Service{
		store:    s,
		clock:    clk,
		notifier: n,
		interval: interval,
		lead:     lead,
		sent:     cache.New(lead+time.Hour, 10*time.Minute),
	}
}

// Run reminds once immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Printf("Starting reminder service (every %s, %s ahead)...", s.interval, s.lead)
	s.RemindOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder service shutting down.")
			return
		case <-timer.C:
			s.RemindOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// RemindOnce sends the reminders due now and returns how many were sent.
// A rent is reminded once per start time.
func (s *Service) RemindOnce(ctx context.Context) int {
	now := s.clock.Now()
	rents, err := s.store.ListRentsStartingBetween(ctx, now, now.Add(s.lead))
	if err != nil {
		log.Printf("Error listing upcoming rents: %v", err)
		return 0
	}

	sent := 0
	for i := range rents {
		rent := &rents[i]
		key := fmt.Sprintf("%d@%d", rent.ID, rent.StartTime.Unix())
		if _, done := s.sent.Get(key); done {
			continue
		}
		n, err := s.remind(ctx, rent)
		if err != nil {
			log.Printf("Error reminding rent %d: %v", rent.ID, err)
			continue
		}
		sent += n
		s.sent.Set(key, struct{}{}, rent.StartTime.Sub(now)+s.lead)
	}
	if sent > 0 {
		log.Printf("Sent %d reminders for %d upcoming rents", sent, len(rents))
	}
	return sent
}

type recipient struct {
	userID     int64
	roomRentID int64
}

func (s *Service) remind(ctx context.Context, rent *model.Rent) (int, error) {
	links, err := s.store.ListRoomRentsByRent(ctx, rent.ID)
	if err != nil {
		return 0, err
	}
	invites, err := s.store.ListInvitesForRent(ctx, rent.ID)
	if err != nil {
		return 0, err
	}

	seen := make(map[recipient]bool)
	send := func(userID int64, link *model.RoomRent) {
		r := recipient{userID: userID, roomRentID: link.ID}
		if seen[r] {
			return
		}
		seen[r] = true
		s.notifier.NotifyReminder(userID, link.Room.Name, rent.StartTime)
	}

	for i := range links {
		link := &links[i]
		send(rent.CreatorID, link)
		for _, inv := range invites {
			if inv.RoomRentID == link.ID && inv.Status == model.InviteStatusAccepted {
				send(inv.UserID, link)
			}
		}
	}
	return len(seen), nil
}
