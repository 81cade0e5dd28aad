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

type OrderService struct {
	Orders OrderRepository
	Users  UserRepository
	Cart   CartRepository
	Events events.Publisher
}

type Checkout struct {
	User *models.User
	Cart models.Cart
}

func (s *OrderService) CheckoutView(ctx context.Context, userID uint) (*Checkout, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	lines, err := s.Cart.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Checkout{User: u, Cart: models.NewCart(lines)}, nil
}

// Finalize turns the cart into orders. An empty cart creates nothing.
func (s *OrderService) Finalize(ctx context.Context, userID uint, phone string) ([]models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.finalize")

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}

	orders, err := s.Orders.PlaceOrders(ctx, userID, phone)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	var total float64
	lines := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		total += o.Total
		lines = append(lines, map[string]any{
			"orderID":  o.ID,
			"product":  o.ProductName,
			"quantity": o.Quantity,
			"total":    o.Total,
		})
	}
	events.Publish(ctx, s.Events, l, events.TopicOrders, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":   "order_placed",
		"userID": userID,
		"items":  lines,
		"total":  models.RoundCents(total),
	})
	return orders, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.Orders.List(ctx)
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "order.delete")
	if err := s.Orders.Delete(ctx, id); err != nil {
		return notFound(err, "order")
	}
	events.Publish(ctx, s.Events, l, events.TopicOrders, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":    "order_deleted",
		"orderID": id,
	})
	return nil
}
