// Package invite tracks per-user invitations to one room of one rent.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log"

	"conferent-backend/internal/clock"
	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// ErrInvalidTransition is returned in strict mode when a status change is
// not allowed from the invite's current status.
var ErrInvalidTransition = errors.New("invalid invite status transition")

// transitions lists the moves allowed in strict mode.
var transitions = map[model.InviteStatus][]model.InviteStatus{
	model.InviteStatusPending: {model.InviteStatusAccepted, model.InviteStatusDeclined},
}

// Manager creates invitations and records responses.
type Manager struct {
	store  store.Store
	clock  clock.Clock
	strict bool
}

// NewManager returns a Manager. With strict set, UpdateStatus only allows
// PENDING to move to ACCEPTED or DECLINED.
func NewManager(s store.Store, clk clock.Clock, strict bool) *Manager {
	return &Manager{store: s, clock: clk, strict: strict}
}

// Create invites userID to roomRentID. Both must exist. An existing invite
// for the same pair is not detected; callers use Exists first.
func (m *Manager) Create(ctx context.Context, userID, roomRentID int64) (*model.UserInvite, error) {
	if _, err := m.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := m.store.GetRoomRent(ctx, roomRentID); err != nil {
		return nil, err
	}

	inv := &model.UserInvite{
		UserID:     userID,
		RoomRentID: roomRentID,
		Status:     model.InviteStatusPending,
		InvitedAt:  m.clock.Now(),
	}
	if err := m.store.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateStatus records a response. responded_at is set to now on every call
// and is never cleared, even when status goes back to PENDING in lenient mode.
func (m *Manager) UpdateStatus(ctx context.Context, id int64, status model.InviteStatus) (*model.UserInvite, error) {
	inv, err := m.store.GetInvite(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.strict && !allowed(inv.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, status)
	}

	now := m.clock.Now()
	previous := inv.Status
	inv.Status = status
	inv.RespondedAt = &now
	if err := m.store.SaveInvite(ctx, inv); err != nil {
		return nil, err
	}
	log.Printf("Invite %d: %s -> %s", id, previous, status)
	return inv, nil
}

func allowed(from, to model.InviteStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (m *Manager) Get(ctx context.Context, id int64) (*model.UserInvite, error) {
	return m.store.GetInvite(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]model.UserInvite, error) {
	return m.store.ListInvites(ctx)
}

func (m *Manager) ListByUser(ctx context.Context, userID int64) ([]model.UserInvite, error) {
	return m.store.ListInvitesByUser(ctx, userID)
}

func (m *Manager) ListByUserAndStatus(ctx context.Context, userID int64, status model.InviteStatus) ([]model.UserInvite, error) {
	return m.store.ListInvitesByUserAndStatus(ctx, userID, status)
}

// ListForRent returns the invitations of every room of rentID.
func (m *Manager) ListForRent(ctx context.Context, rentID int64) ([]model.UserInvite, error) {
	if _, err := m.store.GetRent(ctx, rentID); err != nil {
		return nil, err
	}
	return m.store.ListInvitesForRent(ctx, rentID)
}

func (m *Manager) Find(ctx context.Context, userID, roomRentID int64) (*model.UserInvite, error) {
	return m.store.FindInvite(ctx, userID, roomRentID)
}

func (m *Manager) Exists(ctx context.Context, userID, roomRentID int64) (bool, error) {
	return m.store.ExistsInvite(ctx, userID, roomRentID)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	return m.store.DeleteInvite(ctx, id)
}

func (m *Manager) DeleteByUser(ctx context.Context, userID int64) error {
	return m.store.DeleteInvitesByUser(ctx, userID)
}

func (m *Manager) DeleteByRoomRent(ctx context.Context, roomRentID int64) error {
	return m.store.DeleteInvitesByRoomRent(ctx, roomRentID)
}

// CountPendingByUser counts the invitations userID has not answered.
func (m *Manager) CountPendingByUser(ctx context.Context, userID int64) (int64, error) {
	return m.store.CountPendingInvitesByUser(ctx, userID)
}

// CountAcceptedForRent counts accepted invitations across all rooms of rentID.
func (m *Manager) CountAcceptedForRent(ctx context.Context, rentID int64) (int64, error) {
	return m.store.CountAcceptedInvitesForRent(ctx, rentID)
}
