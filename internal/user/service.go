package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

var (
	ErrNotFound  = errors.New("not found") // 404
	ErrForbidden = errors.New("forbidden") // 403
)

type Service struct {
	Repo *GormRepo
}

// ToggleType flips one user between the user and admin roles and returns the
// new type. Nothing stops an admin from demoting their own account; the next
// panel request will then be refused like any other non-admin's.
func (s *Service) ToggleType(ctx context.Context, ident models.Identity, id uint) (string, error) {
	if !ident.IsAdmin() {
		return "", fmt.Errorf("%w: admin role required", ErrForbidden)
	}

	if err := s.Repo.ToggleType(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return "", err
	}

	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Type, nil
}

// ListCustomers returns shopper accounts, newest first.
func (s *Service) ListCustomers(ctx context.Context, ident models.Identity) ([]models.User, error) {
	if !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return s.Repo.ListByType(ctx, models.TypeUser)
}

func (s *Service) ListUsers(ctx context.Context, ident models.Identity) ([]models.User, error) {
	if !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return s.Repo.ListAll(ctx)
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, err
}
