package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"conferent-backend/internal/model"
)

// UserStore covers account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsUserByEmail(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SearchUsersByName(ctx context.Context, name string) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	exists, err := s.ExistsUserByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("user email %q: %w", u.Email, ErrDuplicate)
	}
	return translate(s.db.WithContext(ctx).Create(u).Error, "user", u.Email)
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &u, nil
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "user", email)
	}
	return &u, nil
}

func (s *gormStore) ExistsUserByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Order("name").Find(&users).Error
	return users, err
}

func (s *gormStore) SearchUsersByName(ctx context.Context, name string) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Where("name LIKE ?", "%"+name+"%").Order("name").Find(&users).Error
	return users, err
}

func (s *gormStore) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("name").Find(&users).Error
	return users, err
}

// UpdateUser saves every column of u; the email must stay unique.
func (s *gormStore) UpdateUser(ctx context.Context, u *model.User) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", u.Email, u.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("user email %q: %w", u.Email, ErrDuplicate)
	}
	return translate(s.db.WithContext(ctx).Save(u).Error, "user", u.ID)
}

// DeleteUser removes the account together with its invitations, push
// subscriptions and every rent it created.
func (s *gormStore) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.User{}, id).Error; err != nil {
			return translate(err, "user", id)
		}

		var rentIDs []int64
		if err := tx.Model(&model.Rent{}).Where("user_id = ?", id).Pluck("id", &rentIDs).Error; err != nil {
			return fmt.Errorf("failed to list rents of user %d: %w", id, err)
		}
		for _, rentID := range rentIDs {
			if err := deleteRentTree(tx, rentID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.UserInvite{}).Error; err != nil {
			return fmt.Errorf("failed to delete invites of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions of user %d: %w", id, err)
		}
		if err := tx.Delete(&model.User{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return nil
	})
}
