package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

type CartService struct {
	Cart     CartRepository
	Products ProductRepository
	Events   events.Publisher
}

func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: quantity must be an integer", ErrValidation)
	}
	return n, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uint) (*models.CartItem, *models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return nil, nil, notFound(err, "product")
	}

	item, err := s.Cart.Add(ctx, userID, productID)
	if err != nil {
		return nil, nil, err
	}

	events.Publish(ctx, s.Events, l, events.TopicCart, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return item, p, nil
}

func (s *CartService) View(ctx context.Context, userID uint) (models.Cart, error) {
	lines, err := s.Cart.Lines(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}
	return models.NewCart(lines), nil
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, lineID)
	}

	l := logging.FromContext(ctx).With("svc", "cart.update")
	if err := s.Cart.SetQuantity(ctx, userID, lineID, uint(quantity)); err != nil {
		return notFound(err, "cart line")
	}

	events.Publish(ctx, s.Events, l, events.TopicCart, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":     "cart_item_updated",
		"userID":   userID,
		"lineID":   lineID,
		"quantity": quantity,
	})
	return nil
}

func (s *CartService) Remove(ctx context.Context, userID, lineID uint) error {
	l := logging.FromContext(ctx).With("svc", "cart.remove")
	if err := s.Cart.Remove(ctx, userID, lineID); err != nil {
		return notFound(err, "cart line")
	}

	events.Publish(ctx, s.Events, l, events.TopicCart, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":   "cart_item_deleted",
		"userID": userID,
		"lineID": lineID,
	})
	return nil
}

func (s *CartService) Count(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	return s.Cart.Count(ctx, userID)
}
