package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"conferent-backend/internal/model"
)

// InviteStore covers invitation persistence.
type InviteStore interface {
	CreateInvite(ctx context.Context, inv *model.UserInvite) error
	// SaveInvite writes status and responded_at of an existing invite.
	SaveInvite(ctx context.Context, inv *model.UserInvite) error
	GetInvite(ctx context.Context, id int64) (*model.UserInvite, error)
	FindInvite(ctx context.Context, userID, roomRentID int64) (*model.UserInvite, error)
	ExistsInvite(ctx context.Context, userID, roomRentID int64) (bool, error)
	ListInvites(ctx context.Context) ([]model.UserInvite, error)
	ListInvitesByUser(ctx context.Context, userID int64) ([]model.UserInvite, error)
	ListInvitesByUserAndStatus(ctx context.Context, userID int64, status model.InviteStatus) ([]model.UserInvite, error)
	// ListInvitesForRent returns every invite of every room of a rent, with
	// User and RoomRent.Room populated.
	ListInvitesForRent(ctx context.Context, rentID int64) ([]model.UserInvite, error)
	DeleteInvite(ctx context.Context, id int64) error
	DeleteInvitesByUser(ctx context.Context, userID int64) error
	DeleteInvitesByRoomRent(ctx context.Context, roomRentID int64) error
	CountPendingInvitesByUser(ctx context.Context, userID int64) (int64, error)
	CountAcceptedInvitesForRent(ctx context.Context, rentID int64) (int64, error)
}

func (s *gormStore) CreateInvite(ctx context.Context, inv *model.UserInvite) error {
	inv.InvitedAt = utc(inv.InvitedAt)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create invite for user %d: %w", inv.UserID, err)
	}
	return nil
}

func (s *gormStore) SaveInvite(ctx context.Context, inv *model.UserInvite) error {
	if inv.RespondedAt != nil {
		t := utc(*inv.RespondedAt)
		inv.RespondedAt = &t
	}
	res := s.db.WithContext(ctx).Model(&model.UserInvite{ID: inv.ID}).
		Select("status", "responded_at", "updated_at").
		Updates(map[string]any{
			"status":       inv.Status,
			"responded_at": inv.RespondedAt,
			"updated_at":   s.db.NowFunc(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update invite %d: %w", inv.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("invite", inv.ID)
	}
	return nil
}

func (s *gormStore) GetInvite(ctx context.Context, id int64) (*model.UserInvite, error) {
	var inv model.UserInvite
	if err := s.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, translate(err, "invite", id)
	}
	return &inv, nil
}

func (s *gormStore) FindInvite(ctx context.Context, userID, roomRentID int64) (*model.UserInvite, error) {
	var inv model.UserInvite
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND room_rent_id = ?", userID, roomRentID).
		First(&inv).Error
	if err != nil {
		return nil, translate(err, "invite", fmt.Sprintf("user=%d roomRent=%d", userID, roomRentID))
	}
	return &inv, nil
}

func (s *gormStore) ExistsInvite(ctx context.Context, userID, roomRentID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.UserInvite{}).
		Where("user_id = ? AND room_rent_id = ?", userID, roomRentID).
		Count(&n).Error
	return n > 0, err
}

func (s *gormStore) ListInvites(ctx context.Context) ([]model.UserInvite, error) {
	var invites []model.UserInvite
	err := s.db.WithContext(ctx).Order("id").Find(&invites).Error
	return invites, err
}

func (s *gormStore) ListInvitesByUser(ctx context.Context, userID int64) ([]model.UserInvite, error) {
	var invites []model.UserInvite
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("invited_at DESC, id").Find(&invites).Error
	return invites, err
}

func (s *gormStore) ListInvitesByUserAndStatus(ctx context.Context, userID int64, status model.InviteStatus) ([]model.UserInvite, error) {
	var invites []model.UserInvite
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("invited_at DESC, id").
		Find(&invites).Error
	return invites, err
}

func (s *gormStore) ListInvitesForRent(ctx context.Context, rentID int64) ([]model.UserInvite, error) {
	var invites []model.UserInvite
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("RoomRent.Room").
		Joins("JOIN room_rents ON room_rents.id = user_invites.room_rent_id").
		Where("room_rents.rent_id = ?", rentID).
		Order("user_invites.id").
		Find(&invites).Error
	return invites, err
}

func (s *gormStore) DeleteInvite(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.UserInvite{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete invite %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("invite", id)
	}
	return nil
}

func (s *gormStore) DeleteInvitesByUser(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserInvite{}).Error
}

func (s *gormStore) DeleteInvitesByRoomRent(ctx context.Context, roomRentID int64) error {
	return s.db.WithContext(ctx).Where("room_rent_id = ?", roomRentID).Delete(&model.UserInvite{}).Error
}

func (s *gormStore) CountPendingInvitesByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.UserInvite{}).
		Where("user_id = ? AND status = ?", userID, model.InviteStatusPending).
		Count(&n).Error
	return n, err
}

func (s *gormStore) CountAcceptedInvitesForRent(ctx context.Context, rentID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.UserInvite{}).
		Joins("JOIN room_rents ON room_rents.id = user_invites.room_rent_id").
		Where("room_rents.rent_id = ? AND user_invites.status = ?", rentID, model.InviteStatusAccepted).
		Count(&n).Error
	return n, err
}
