package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductRepo struct {
	DB *gorm.DB
}

func (r *ProductRepo) List(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// Search matches q as a case-insensitive substring of name or description.
func (r *ProductRepo) Search(ctx context.Context, q string) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"

	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{ID: p.ID}).Updates(map[string]any{
		"name":        p.Name,
		"category":    p.Category,
		"price":       p.Price,
		"description": p.Description,
		"image":       p.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the product and every cart line pointing at it.
// Orders keep their snapshots.
func (r *ProductRepo) Delete(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
