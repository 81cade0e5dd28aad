package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CartRepo struct {
	DB *gorm.DB
}

// Add inserts a line with quantity 1 or bumps the existing one. The unique
// (user_id, product_id) index makes the upsert atomic.
func (r *CartRepo) Add(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: 1}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart.quantity + ?", 1),
			}),
		}).Create(&item).Error; err != nil {
			return err
		}
		item = models.CartItem{}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepo) Lines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return cartLines(r.DB.WithContext(ctx), userID)
}

func cartLines(db *gorm.DB, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := db.Table("cart").
		Select("cart.id, cart.product_id, products.name, products.price, products.image, cart.quantity").
		Joins("JOIN products ON products.id = cart.product_id").
		Where("cart.user_id = ?", userID).
		Order("cart.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, lineID uint, quantity uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepo) Remove(ctx context.Context, userID, lineID uint) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepo) Count(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
