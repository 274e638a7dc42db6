package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
	"github.com/kaveesha/techstore/internal/util"
)

// Query is the storefront listing filter set. All provided fields are ANDed;
// empty fields are ignored. Category and Subcategory match exactly, Search is
// a case-insensitive substring match on name and description.
type Query struct {
	Category    string
	Subcategory string
	Search      string
	Page        int
}

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) filtered(ctx context.Context, q Query) *gorm.DB {
	tx := r.DB.WithContext(ctx).Model(&models.Product{})
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Subcategory != "" {
		tx = tx.Where("subcategory = ?", q.Subcategory)
	}
	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	return tx
}

func (r *GormRepo) ListProducts(ctx context.Context, q Query) (int64, []models.Product, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	offset, limit := util.Calculate(q.Page, util.DefaultPageSize)

	items := make([]models.Product, 0, limit)
	if err := r.filtered(ctx, q).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CategoryRows returns (category, subcategory) pairs in product id order, the
// order categories were first added to the table.
func (r *GormRepo) CategoryRows(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "category", "subcategory").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
