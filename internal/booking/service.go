// Package booking owns the reservation core: interval validation, conflict
// detection and the create/update/delete orchestration of rents.
package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"conferent-backend/internal/clock"
	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// Notifier receives booking events after they are committed. Calls must not
// block; delivery failures stay inside the implementation.
type Notifier interface {
	NotifyConfirmed(userID int64, roomName string, start, end time.Time)
	NotifyCancelled(userID int64, roomName string, start, end time.Time)
}

// Options tune validation.
type Options struct {
	// RequireFutureStart rejects create and update requests whose start is
	// not after the clock's current time.
	RequireFutureStart bool
}

// Request carries the fields of a new rent.
type Request struct {
	Start       time.Time
	End         time.Time
	Purpose     string
	Description string
	CreatorID   int64
	RoomIDs     []int64
	InviteeIDs  []int64
}

// UpdateRequest replaces the time, text and rooms of a rent. The creator
// is never changed.
type UpdateRequest struct {
	Start       time.Time
	End         time.Time
	Purpose     string
	Description string
	RoomIDs     []int64
}

// Service orchestrates rents, their room links and their invitations.
type Service struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	locks    *RoomLocker
	opts     Options
}

// NewService wires the orchestrator. A nil notifier discards events.
func NewService(s store.Store, clk clock.Clock, n Notifier, opts Options) *Service {
	if n == nil {
		n = discard{}
	}
	return &Service{
		store:    s,
		clock:    clk,
		notifier: n,
		locks:    NewRoomLocker(),
		opts:     opts,
	}
}

type discard struct{}

func (discard) NotifyConfirmed(int64, string, time.Time, time.Time) {}
func (discard) NotifyCancelled(int64, string, time.Time, time.Time) {}

// notice is one (recipient, room) pair of a cancellation.
type notice struct {
	userID   int64
	roomName string
}

func (s *Service) validate(start, end time.Time) error {
	if err := (Interval{Start: start, End: end}).Validate(); err != nil {
		return err
	}
	if s.opts.RequireFutureStart && !start.After(s.clock.Now()) {
		return fmt.Errorf("%w: start %s is not in the future", ErrInvalidInterval, start.Format(time.RFC3339))
	}
	return nil
}

// Create validates and stores a rent, links it to every room and invites
// every invitee to every room. Nothing is stored unless all steps succeed.
func (s *Service) Create(ctx context.Context, req Request) (*View, error) {
	if err := s.validate(req.Start, req.End); err != nil {
		return nil, err
	}
	start, end := req.Start.UTC(), req.End.UTC()
	roomIDs := unique(req.RoomIDs)
	inviteeIDs := unique(req.InviteeIDs)

	unlock := s.locks.Lock(roomIDs)
	defer unlock()

	var view *View
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.LockRooms(ctx, roomIDs); err != nil {
			return fmt.Errorf("failed to lock rooms: %w", err)
		}
		conflict, err := HasConflict(ctx, tx, roomIDs, start, end, nil)
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}

		if _, err := tx.GetUser(ctx, req.CreatorID); err != nil {
			return err
		}

		rent := &model.Rent{
			StartTime:   start,
			EndTime:     end,
			Purpose:     req.Purpose,
			Description: req.Description,
			CreatorID:   req.CreatorID,
		}
		if err := tx.CreateRent(ctx, rent); err != nil {
			return err
		}
		links, err := s.linkRooms(ctx, tx, rent.ID, roomIDs)
		if err != nil {
			return err
		}
		if err := s.inviteAll(ctx, tx, links, inviteeIDs); err != nil {
			return err
		}

		view, err = assemble(ctx, tx, rent)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Rent %d created by user %d for %d room(s), %d invitee(s)", view.ID, view.CreatorID, len(view.Rooms), len(inviteeIDs))
	s.sendConfirmed(view)
	return view, nil
}

// Update replaces the interval, text and rooms of rent id. Existing links
// are dropped together with their invitations; invitations are not recreated.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*View, error) {
	if err := s.validate(req.Start, req.End); err != nil {
		return nil, err
	}
	start, end := req.Start.UTC(), req.End.UTC()
	roomIDs := unique(req.RoomIDs)

	unlock := s.locks.Lock(roomIDs)
	defer unlock()

	var view *View
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		rent, err := tx.GetRent(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.LockRooms(ctx, roomIDs); err != nil {
			return fmt.Errorf("failed to lock rooms: %w", err)
		}
		conflict, err := HasConflict(ctx, tx, roomIDs, start, end, &id)
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}

		rent.StartTime = start
		rent.EndTime = end
		rent.Purpose = req.Purpose
		rent.Description = req.Description
		if err := tx.SaveRent(ctx, rent); err != nil {
			return err
		}
		if err := tx.DeleteRoomRentsByRent(ctx, id); err != nil {
			return err
		}
		if _, err := s.linkRooms(ctx, tx, id, roomIDs); err != nil {
			return err
		}

		saved, err := tx.GetRent(ctx, id)
		if err != nil {
			return err
		}
		view, err = assemble(ctx, tx, saved)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Rent %d updated: %s - %s, %d room(s)", id, start.Format(time.RFC3339), end.Format(time.RFC3339), len(view.Rooms))
	s.sendConfirmed(view)
	return view, nil
}

// Delete removes rent id with its room links and invitations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var view *View
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		rent, err := tx.GetRent(ctx, id)
		if err != nil {
			return err
		}
		if view, err = assemble(ctx, tx, rent); err != nil {
			return err
		}
		return tx.DeleteRent(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("Rent %d deleted", id)
	s.sendCancelled(view)
	return nil
}

// HasTimeConflict reports whether any of roomIDs is booked during
// [start, end), ignoring excludeRentID when set.
func (s *Service) HasTimeConflict(ctx context.Context, roomIDs []int64, start, end time.Time, excludeRentID *int64) (bool, error) {
	if err := (Interval{Start: start, End: end}).Validate(); err != nil {
		return false, err
	}
	return HasConflict(ctx, s.store, unique(roomIDs), start.UTC(), end.UTC(), excludeRentID)
}

// linkRooms creates one RoomRent per room. A missing room aborts with
// store.ErrNotFound.
func (s *Service) linkRooms(ctx context.Context, tx store.Store, rentID int64, roomIDs []int64) ([]model.RoomRent, error) {
	links := make([]model.RoomRent, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		link := model.RoomRent{RoomID: room.ID, RentID: rentID}
		if err := tx.CreateRoomRent(ctx, &link); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// inviteAll creates a PENDING invite for every (invitee, link) pair.
func (s *Service) inviteAll(ctx context.Context, tx store.Store, links []model.RoomRent, inviteeIDs []int64) error {
	now := s.clock.Now()
	for _, userID := range inviteeIDs {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		for _, link := range links {
			inv := &model.UserInvite{
				UserID:     userID,
				RoomRentID: link.ID,
				Status:     model.InviteStatusPending,
				InvitedAt:  now,
			}
			if err := tx.CreateInvite(ctx, inv); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) sendConfirmed(v *View) {
	for _, room := range v.Rooms {
		s.notifier.NotifyConfirmed(v.CreatorID, room.Name, v.Start, v.End)
	}
}

func (s *Service) sendCancelled(v *View) {
	seen := make(map[notice]struct{})
	var notices []notice
	add := func(n notice) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		notices = append(notices, n)
	}
	for _, room := range v.Rooms {
		add(notice{userID: v.CreatorID, roomName: room.Name})
	}
	for _, inv := range v.Invitees {
		add(notice{userID: inv.UserID, roomName: v.roomName(inv.RoomRentID)})
	}
	for _, n := range notices {
		s.notifier.NotifyCancelled(n.userID, n.roomName, v.Start, v.End)
	}
}
