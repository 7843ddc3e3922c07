package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conferent-backend/internal/model"
)

// RentStore covers booking persistence.
type RentStore interface {
	CreateRent(ctx context.Context, r *model.Rent) error
	// SaveRent overwrites the scalar columns of an existing rent.
	SaveRent(ctx context.Context, r *model.Rent) error
	GetRent(ctx context.Context, id int64) (*model.Rent, error)
	ExistsRent(ctx context.Context, id int64) (bool, error)
	ListRents(ctx context.Context) ([]model.Rent, error)
	ListRentsByCreator(ctx context.Context, creatorID int64) ([]model.Rent, error)
	// ListRentsByDateRange returns rents lying entirely inside [from, to].
	ListRentsByDateRange(ctx context.Context, from, to time.Time) ([]model.Rent, error)
	ListUpcomingRents(ctx context.Context, from time.Time) ([]model.Rent, error)
	// ListRentsStartingBetween returns rents with from <= start < to.
	ListRentsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Rent, error)
	SearchRentsByPurpose(ctx context.Context, purpose string) ([]model.Rent, error)
	ListRentsByRoom(ctx context.Context, roomID int64) ([]model.Rent, error)
	// DeleteRent removes the rent after its invitations and room links.
	DeleteRent(ctx context.Context, id int64) error
}

func (s *gormStore) CreateRent(ctx context.Context, r *model.Rent) error {
	r.StartTime, r.EndTime = utc(r.StartTime), utc(r.EndTime)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create rent: %w", err)
	}
	return nil
}

func (s *gormStore) SaveRent(ctx context.Context, r *model.Rent) error {
	r.StartTime, r.EndTime = utc(r.StartTime), utc(r.EndTime)
	res := s.db.WithContext(ctx).Model(&model.Rent{ID: r.ID}).
		Select("start_time", "end_time", "purpose", "description", "user_id", "updated_at").
		Updates(map[string]any{
			"start_time":  r.StartTime,
			"end_time":    r.EndTime,
			"purpose":     r.Purpose,
			"description": r.Description,
			"user_id":     r.CreatorID,
			"updated_at":  s.db.NowFunc(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update rent %d: %w", r.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("rent", r.ID)
	}
	return nil
}

func (s *gormStore) GetRent(ctx context.Context, id int64) (*model.Rent, error) {
	var r model.Rent
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err, "rent", id)
	}
	return &r, nil
}

func (s *gormStore) ExistsRent(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Rent{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) ListRents(ctx context.Context) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).Order("start_time DESC").Find(&rents).Error
	return rents, err
}

func (s *gormStore) ListRentsByCreator(ctx context.Context, creatorID int64) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).Where("user_id = ?", creatorID).Order("start_time DESC").Find(&rents).Error
	return rents, err
}

func (s *gormStore) ListRentsByDateRange(ctx context.Context, from, to time.Time) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND end_time <= ?", utc(from), utc(to)).
		Order("start_time").
		Find(&rents).Error
	return rents, err
}

func (s *gormStore) ListUpcomingRents(ctx context.Context, from time.Time) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).Where("start_time > ?", utc(from)).Order("start_time").Find(&rents).Error
	return rents, err
}

func (s *gormStore) ListRentsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", utc(from), utc(to)).
		Order("start_time").
		Find(&rents).Error
	return rents, err
}

func (s *gormStore) SearchRentsByPurpose(ctx context.Context, purpose string) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).Where("purpose LIKE ?", "%"+purpose+"%").Order("start_time DESC").Find(&rents).Error
	return rents, err
}

func (s *gormStore) ListRentsByRoom(ctx context.Context, roomID int64) ([]model.Rent, error) {
	var rents []model.Rent
	err := s.db.WithContext(ctx).
		Joins("JOIN room_rents ON room_rents.rent_id = rents.id").
		Where("room_rents.room_id = ?", roomID).
		Order("rents.start_time DESC").
		Find(&rents).Error
	return rents, err
}

func (s *gormStore) DeleteRent(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.Rent{}, id).Error; err != nil {
			return translate(err, "rent", id)
		}
		return deleteRentTree(tx, id)
	})
}

// deleteRentTree deletes children before parents: invites, links, rent.
func deleteRentTree(tx *gorm.DB, rentID int64) error {
	links := tx.Model(&model.RoomRent{}).Select("id").Where("rent_id = ?", rentID)
	if err := tx.Where("room_rent_id IN (?)", links).Delete(&model.UserInvite{}).Error; err != nil {
		return fmt.Errorf("failed to delete invites for rent %d: %w", rentID, err)
	}
	if err := tx.Where("rent_id = ?", rentID).Delete(&model.RoomRent{}).Error; err != nil {
		return fmt.Errorf("failed to delete room links for rent %d: %w", rentID, err)
	}
	if err := tx.Delete(&model.Rent{}, rentID).Error; err != nil {
		return fmt.Errorf("failed to delete rent %d: %w", rentID, err)
	}
	return nil
}
