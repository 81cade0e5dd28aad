// Package service holds the storefront use cases on top of narrow
// repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("auth")
	ErrNotFound   = errors.New("not found")
)

type UserRepository interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, q string) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) (*models.Product, error)
}

type CartRepository interface {
	Add(ctx context.Context, userID, productID uint) (*models.CartItem, error)
	Lines(ctx context.Context, userID uint) ([]models.CartLine, error)
	SetQuantity(ctx context.Context, userID, lineID uint, quantity uint) error
	Remove(ctx context.Context, userID, lineID uint) error
	Count(ctx context.Context, userID uint) (int64, error)
}

type OrderRepository interface {
	PlaceOrders(ctx context.Context, userID uint, phone string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Delete(ctx context.Context, id uint) error
}

type AboutRepository interface {
	Create(ctx context.Context, e *models.AboutEntry) error
	List(ctx context.Context) ([]models.AboutEntry, error)
	Delete(ctx context.Context, id uint) (*models.AboutEntry, error)
}

// ProductIndex is an optional search index kept in sync with products.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	RemoveProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, q string) ([]models.Product, error)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
