package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrderRepo struct {
	DB *gorm.DB
}

// PlaceOrders snapshots every cart line of the user into an order row and
// empties the cart in one transaction. An empty cart yields no orders.
func (r *OrderRepo) PlaceOrders(ctx context.Context, userID uint, phone string) ([]models.Order, error) {
	var orders []models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		lines, err := cartLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		orders = make([]models.Order, 0, len(lines))
		for _, l := range lines {
			orders = append(orders, models.Order{
				UserID:      userID,
				Name:        user.Name,
				Surname:     user.Surname,
				Email:       user.Email,
				Address:     user.Address,
				Phone:       phone,
				ProductName: l.Name,
				UnitPrice:   l.Price,
				Quantity:    l.Quantity,
				Total:       models.LineTotal(l.Price, l.Quantity),
			})
		}
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
