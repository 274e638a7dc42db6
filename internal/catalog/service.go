package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrForbidden  = errors.New("forbidden")  // 403
)

// CategoryGroup pairs a category with its distinct subcategories. Groups are
// ordered by first appearance in the product table, as are subcategories
// within a group.
type CategoryGroup struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

type Service struct {
	Repo *GormRepo
}

// ListProducts runs the storefront listing query. Unknown filter values and
// out-of-range pages yield an empty result, never an error.
func (s *Service) ListProducts(ctx context.Context, q Query) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, q)
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

// CategoryIndex derives the category navigation for the filter sidebar. A
// product without a subcategory still registers its category; NULL and empty
// subcategories never become entries. Recomputed on every call.
func (s *Service) CategoryIndex(ctx context.Context) ([]CategoryGroup, error) {
	rows, err := s.Repo.CategoryRows(ctx)
	if err != nil {
		return nil, err
	}

	var groups []CategoryGroup
	pos := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, row := range rows {
		if row.Category == "" {
			continue
		}
		i, ok := pos[row.Category]
		if !ok {
			i = len(groups)
			pos[row.Category] = i
			seen[row.Category] = make(map[string]struct{})
			groups = append(groups, CategoryGroup{Name: row.Category, Subcategories: []string{}})
		}
		if row.Subcategory == nil || *row.Subcategory == "" {
			continue
		}
		if _, dup := seen[row.Category][*row.Subcategory]; dup {
			continue
		}
		seen[row.Category][*row.Subcategory] = struct{}{}
		groups[i].Subcategories = append(groups[i].Subcategories, *row.Subcategory)
	}

	return groups, nil
}

func (s *Service) CreateProduct(ctx context.Context, ident models.Identity, p *models.Product) error {
	if !ident.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if p.Currency == "" {
		p.Currency = models.DefaultCurrency
	}
	return s.Repo.CreateProduct(ctx, p)
}

type PatchProduct struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Subcategory *string  `json:"subcategory"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	RAM         *string  `json:"ram"`
	Storage     *string  `json:"storage"`
}

func (s *Service) UpdateProduct(ctx context.Context, ident models.Identity, id uint, req PatchProduct) (*models.Product, error) {
	if !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Subcategory != nil {
		p.Subcategory = req.Subcategory
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.RAM != nil {
		p.RAM = *req.RAM
	}
	if req.Storage != nil {
		p.Storage = *req.Storage
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes one product row. Historical order snapshots are not
// touched; they carry their own copy of the product data.
func (s *Service) DeleteProduct(ctx context.Context, ident models.Identity, id uint) error {
	if !ident.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return err
}
