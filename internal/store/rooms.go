package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conferent-backend/internal/model"
)

// RoomStore covers the room registry.
type RoomStore interface {
	CreateRoom(ctx context.Context, r *model.Room) error
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	ExistsRoomByName(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	SearchRoomsByName(ctx context.Context, name string) ([]model.Room, error)
	ListRoomsByMinCapacity(ctx context.Context, minCapacity int) ([]model.Room, error)
	ListRoomsByLocation(ctx context.Context, location string) ([]model.Room, error)
	ListAvailableRooms(ctx context.Context, start, end time.Time) ([]model.Room, error)
	UpdateRoom(ctx context.Context, r *model.Room) error
	DeleteRoom(ctx context.Context, id int64) error
	// LockRooms takes row locks on the given rooms until the surrounding
	// transaction ends. It is a no-op on drivers without SELECT ... FOR UPDATE.
	LockRooms(ctx context.Context, ids []int64) error
}

func (s *gormStore) CreateRoom(ctx context.Context, r *model.Room) error {
	exists, err := s.ExistsRoomByName(ctx, r.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("room name %q: %w", r.Name, ErrDuplicate)
	}
	return translate(s.db.WithContext(ctx).Create(r).Error, "room", r.Name)
}

func (s *gormStore) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var r model.Room
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err, "room", id)
	}
	return &r, nil
}

func (s *gormStore) ExistsRoomByName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Room{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Order("name").Find(&rooms).Error
	return rooms, err
}

func (s *gormStore) SearchRoomsByName(ctx context.Context, name string) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Where("name LIKE ?", "%"+name+"%").Order("name").Find(&rooms).Error
	return rooms, err
}

func (s *gormStore) ListRoomsByMinCapacity(ctx context.Context, minCapacity int) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Where("capacity >= ?", minCapacity).Order("capacity").Find(&rooms).Error
	return rooms, err
}

func (s *gormStore) ListRoomsByLocation(ctx context.Context, location string) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Where("location = ?", location).Order("name").Find(&rooms).Error
	return rooms, err
}

// ListAvailableRooms returns the rooms with no rent overlapping [start, end).
func (s *gormStore) ListAvailableRooms(ctx context.Context, start, end time.Time) ([]model.Room, error) {
	busy := s.db.Model(&model.RoomRent{}).
		Select("room_rents.room_id").
		Joins("JOIN rents ON rents.id = room_rents.rent_id").
		Where("rents.start_time < ? AND rents.end_time > ?", utc(end), utc(start))

	var rooms []model.Room
	err := s.db.WithContext(ctx).Where("id NOT IN (?)", busy).Order("name").Find(&rooms).Error
	return rooms, err
}

// UpdateRoom saves every column of r; the name must stay unique.
func (s *gormStore) UpdateRoom(ctx context.Context, r *model.Room) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Room{}).
		Where("name = ? AND id <> ?", r.Name, r.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("room name %q: %w", r.Name, ErrDuplicate)
	}
	return translate(s.db.WithContext(ctx).Save(r).Error, "room", r.ID)
}

// DeleteRoom removes the room and every room-rent link (and its invitations)
// that referenced it. Rents themselves are kept.
func (s *gormStore) DeleteRoom(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.Room{}, id).Error; err != nil {
			return translate(err, "room", id)
		}

		links := tx.Model(&model.RoomRent{}).Select("id").Where("room_id = ?", id)
		if err := tx.Where("room_rent_id IN (?)", links).Delete(&model.UserInvite{}).Error; err != nil {
			return fmt.Errorf("failed to delete invites for room %d: %w", id, err)
		}
		if err := tx.Where("room_id = ?", id).Delete(&model.RoomRent{}).Error; err != nil {
			return fmt.Errorf("failed to delete links for room %d: %w", id, err)
		}
		if err := tx.Delete(&model.Room{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete room %d: %w", id, err)
		}
		return nil
	})
}

func (s *gormStore) LockRooms(ctx context.Context, ids []int64) error {
	if len(ids) == 0 || s.db.Dialector.Name() != "postgres" {
		return nil
	}
	var rooms []model.Room
	return s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id").
		Find(&rooms).Error
}
