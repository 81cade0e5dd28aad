package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type AboutService struct {
	Entries AboutRepository
	Images  storage.Store
	Events  events.Publisher
}

func (s *AboutService) Create(ctx context.Context, text string, image *Upload) (*models.AboutEntry, error) {
	l := logging.FromContext(ctx).With("svc", "about.create")

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}

	e := models.AboutEntry{Body: text}
	if image != nil {
		name, err := s.Images.Save(ctx, image.Filename, image.Body)
		if err != nil {
			if errors.Is(err, storage.ErrBadName) {
				return nil, fmt.Errorf("%w: unsupported image file", ErrValidation)
			}
			return nil, err
		}
		e.Image = name
	}

	if err := s.Entries.Create(ctx, &e); err != nil {
		if e.Image != "" {
			_ = s.Images.Delete(ctx, e.Image)
		}
		return nil, err
	}

	events.Publish(ctx, s.Events, l, events.TopicAbout, strconv.FormatUint(uint64(e.ID), 10), map[string]any{
		"type":    "about_entry_created",
		"entryID": e.ID,
	})
	return &e, nil
}

func (s *AboutService) List(ctx context.Context) ([]models.AboutEntry, error) {
	return s.Entries.List(ctx)
}

func (s *AboutService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "about.delete")

	e, err := s.Entries.Delete(ctx, id)
	if err != nil {
		return notFound(err, "about entry")
	}
	if e.Image != "" {
		if err := s.Images.Delete(ctx, e.Image); err != nil {
			l.Warn("image_delete_error", "image", e.Image, "error", err)
		}
	}

	events.Publish(ctx, s.Events, l, events.TopicAbout, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":    "about_entry_deleted",
		"entryID": id,
	})
	return nil
}
