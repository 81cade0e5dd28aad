package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type AboutRepo struct {
	DB *gorm.DB
}

func (r *AboutRepo) Create(ctx context.Context, e *models.AboutEntry) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *AboutRepo) List(ctx context.Context) ([]models.AboutEntry, error) {
	var entries []models.AboutEntry
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete returns the removed entry so its image can be cleaned up.
func (r *AboutRepo) Delete(ctx context.Context, id uint) (*models.AboutEntry, error) {
	var entry models.AboutEntry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AboutEntry{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
