package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type CatalogService struct {
	Products ProductRepository
	Index    ProductIndex
	Images   storage.Store
	Events   events.Publisher
}

// Upload is an uploaded file as received from a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

type ProductInput struct {
	Name        string
	Category    string
	Price       string
	Description string
	Image       *Upload
}

// MaxPrice bounds product prices so cart and order totals stay finite.
const MaxPrice = 1_000_000_000

func ParsePrice(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	if price > MaxPrice {
		return 0, fmt.Errorf("%w: price must not exceed %d", ErrValidation, MaxPrice)
	}
	price = models.RoundCents(price)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return price, nil
}

func (in ProductInput) apply(p *models.Product) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return err
	}
	p.Name = name
	p.Category = strings.TrimSpace(in.Category)
	p.Price = price
	p.Description = strings.TrimSpace(in.Description)
	return nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Products.List(ctx)
}

func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.Products.ListByCategory(ctx, category)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Products.Categories(ctx)
}

// Search prefers the external index and falls back to the database.
func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	if s.Index != nil {
		items, err := s.Index.Search(ctx, q)
		if err == nil {
			return items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Products.Search(ctx, q)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func (s *CatalogService) saveImage(ctx context.Context, up *Upload) (string, error) {
	name, err := s.Images.Save(ctx, up.Filename, up.Body)
	if err != nil {
		if errors.Is(err, storage.ErrBadName) {
			return "", fmt.Errorf("%w: unsupported image file", ErrValidation)
		}
		return "", err
	}
	return name, nil
}

func (s *CatalogService) dropImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.Images.Delete(ctx, name); err != nil {
		logging.FromContext(ctx).Warn("image_delete_error", "image", name, "error", err)
	}
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	var p models.Product
	if err := in.apply(&p); err != nil {
		return nil, err
	}
	if in.Image != nil {
		name, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = name
	}

	if err := s.Products.Create(ctx, &p); err != nil {
		s.dropImage(ctx, p.Image)
		return nil, err
	}

	s.reindex(ctx, &p)
	events.Publish(ctx, s.Events, l, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return &p, nil
}

// Update keeps the current image unless a new one is uploaded.
func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update")

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}

	previous := p.Image
	if in.Image != nil {
		name, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = name
	}

	if err := s.Products.Update(ctx, p); err != nil {
		if p.Image != previous {
			s.dropImage(ctx, p.Image)
		}
		return nil, notFound(err, "product")
	}
	if p.Image != previous {
		s.dropImage(ctx, previous)
	}

	s.reindex(ctx, p)
	events.Publish(ctx, s.Events, l, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return p, nil
}

// Delete removes the product and its cart lines. Orders are kept.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete")

	p, err := s.Products.Delete(ctx, id)
	if err != nil {
		return notFound(err, "product")
	}
	s.dropImage(ctx, p.Image)

	if s.Index != nil {
		if err := s.Index.RemoveProduct(ctx, id); err != nil {
			l.Warn("search_index_error", "productID", id, "error", err)
		}
	}
	events.Publish(ctx, s.Events, l, events.TopicProducts, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "productID", p.ID, "error", err)
	}
}

// Reindex pushes every product into the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Products.List(ctx)
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := s.Index.IndexProduct(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("index product %d: %w", items[i].ID, err)
		}
	}
	return len(items), nil
}
