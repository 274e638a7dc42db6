package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// ToggleType flips the role column in a single statement so two concurrent
// toggles race only at the storage layer.
func (r *GormRepo) ToggleType(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("type", gorm.Expr(
			"CASE WHEN type = ? THEN ? ELSE ? END",
			models.TypeAdmin, models.TypeUser, models.TypeAdmin,
		))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListByType(ctx context.Context, typ string) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Where("type = ?", typ).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
