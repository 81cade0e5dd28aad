package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.Order{}, &models.AboutEntry{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account once. An existing row with the same
// email is left as is, password included.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, fmt.Errorf("seed admin: email and password are required")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	admin := models.User{
		Name:         "Super",
		Surname:      "Admin",
		Email:        email,
		Address:      "Admin address",
		PasswordHash: pwHash,
		IsAdmin:      true,
	}
	tx := db.WithContext(ctx).Where("email = ?", email).FirstOrCreate(&admin)
	if tx.Error != nil {
		return false, fmt.Errorf("seed admin: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func Bootstrap(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) (bool, error) {
	if err := Migrate(db); err != nil {
		return false, err
	}
	return SeedAdmin(ctx, db, adminEmail, adminPassword)
}
