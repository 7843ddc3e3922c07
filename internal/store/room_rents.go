package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conferent-backend/internal/model"
)

// RoomRentStore covers the room-to-rent join table.
type RoomRentStore interface {
	CreateRoomRent(ctx context.Context, rr *model.RoomRent) error
	GetRoomRent(ctx context.Context, id int64) (*model.RoomRent, error)
	FindRoomRent(ctx context.Context, rentID, roomID int64) (*model.RoomRent, error)
	ExistsRoomRent(ctx context.Context, roomID, rentID int64) (bool, error)
	// ListRoomRentsByRent returns the links of a rent with Room populated.
	ListRoomRentsByRent(ctx context.Context, rentID int64) ([]model.RoomRent, error)
	ListRoomRentsByRoom(ctx context.Context, roomID int64) ([]model.RoomRent, error)
	// FindConflicting returns the links of roomID whose rent overlaps
	// [start, end): existing.start < end AND existing.end > start.
	FindConflicting(ctx context.Context, roomID int64, start, end time.Time) ([]model.RoomRent, error)
	DeleteRoomRent(ctx context.Context, id int64) error
	DeleteRoomRentsByRent(ctx context.Context, rentID int64) error
}

func (s *gormStore) CreateRoomRent(ctx context.Context, rr *model.RoomRent) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rr).Error; err != nil {
		return translate(err, "room rent", fmt.Sprintf("room=%d rent=%d", rr.RoomID, rr.RentID))
	}
	return nil
}

func (s *gormStore) GetRoomRent(ctx context.Context, id int64) (*model.RoomRent, error) {
	var rr model.RoomRent
	if err := s.db.WithContext(ctx).Preload("Room").First(&rr, id).Error; err != nil {
		return nil, translate(err, "room rent", id)
	}
	return &rr, nil
}

func (s *gormStore) FindRoomRent(ctx context.Context, rentID, roomID int64) (*model.RoomRent, error) {
	var rr model.RoomRent
	err := s.db.WithContext(ctx).Where("rent_id = ? AND room_id = ?", rentID, roomID).First(&rr).Error
	if err != nil {
		return nil, translate(err, "room rent", fmt.Sprintf("rent=%d room=%d", rentID, roomID))
	}
	return &rr, nil
}

func (s *gormStore) ExistsRoomRent(ctx context.Context, roomID, rentID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.RoomRent{}).
		Where("room_id = ? AND rent_id = ?", roomID, rentID).
		Count(&n).Error
	return n > 0, err
}

func (s *gormStore) ListRoomRentsByRent(ctx context.Context, rentID int64) ([]model.RoomRent, error) {
	var links []model.RoomRent
	err := s.db.WithContext(ctx).Preload("Room").Where("rent_id = ?", rentID).Order("id").Find(&links).Error
	return links, err
}

func (s *gormStore) ListRoomRentsByRoom(ctx context.Context, roomID int64) ([]model.RoomRent, error) {
	var links []model.RoomRent
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id").Find(&links).Error
	return links, err
}

func (s *gormStore) FindConflicting(ctx context.Context, roomID int64, start, end time.Time) ([]model.RoomRent, error) {
	var links []model.RoomRent
	err := s.db.WithContext(ctx).
		Joins("JOIN rents ON rents.id = room_rents.rent_id").
		Where("room_rents.room_id = ? AND rents.start_time < ? AND rents.end_time > ?", roomID, utc(end), utc(start)).
		Find(&links).Error
	return links, err
}

func (s *gormStore) DeleteRoomRent(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.RoomRent{}, id).Error; err != nil {
			return translate(err, "room rent", id)
		}
		if err := tx.Where("room_rent_id = ?", id).Delete(&model.UserInvite{}).Error; err != nil {
			return fmt.Errorf("failed to delete invites for room rent %d: %w", id, err)
		}
		return tx.Delete(&model.RoomRent{}, id).Error
	})
}

// DeleteRoomRentsByRent drops every link of a rent along with their invites.
func (s *gormStore) DeleteRoomRentsByRent(ctx context.Context, rentID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		links := tx.Model(&model.RoomRent{}).Select("id").Where("rent_id = ?", rentID)
		if err := tx.Where("room_rent_id IN (?)", links).Delete(&model.UserInvite{}).Error; err != nil {
			return fmt.Errorf("failed to delete invites for rent %d: %w", rentID, err)
		}
		if err := tx.Where("rent_id = ?", rentID).Delete(&model.RoomRent{}).Error; err != nil {
			return fmt.Errorf("failed to delete room links for rent %d: %w", rentID, err)
		}
		return nil
	})
}
