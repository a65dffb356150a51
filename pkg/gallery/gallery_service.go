package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/storage"
)

const (
	StorageKey = "photos"
	// MaxUploadSize bounds a single photo; the whole gallery lives in one entry.
	MaxUploadSize = 5 << 20
)

var (
	ErrTooLarge   = errors.New("photo exceeds the upload limit")
	ErrNotAnImage = errors.New("file is not an image")
)

type Service struct {
	photos *collection.Manager[Photo]
}

func NewService(storage storage.Service, clock utils.Clock) *Service {
	return &Service{photos: collection.NewManager(storage, clock, photoSpec)}
}

var photoSpec = collection.Spec[Photo]{
	Key:        StorageKey,
	LegacyKeys: []string{"apartamento-photos"},
	GetID:      func(p Photo) collection.ID { return p.ID },
	SetID:      func(p *Photo, id collection.ID) { p.ID = id },
	Fields: map[string]func(Photo) string{
		"category": func(p Photo) string { return string(p.Category) },
	},
	SearchText: func(p Photo) []string { return []string{p.Title, p.Description} },
	Touch: func(p *Photo, now time.Time, created bool) {
		if created && p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	},
	Seed:     seedPhotos,
	Validate: validatePhoto,
}

func validatePhoto(p Photo) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: photo title is required", collection.ErrInvalid)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: unknown photo category %q", collection.ErrInvalid, p.Category)
	}
	if p.Src == "" {
		return fmt.Errorf("%w: photo has no image", collection.ErrInvalid)
	}
	return nil
}

// Upload reads the image from r and stores it inline as a data URL next to meta.
func (s *Service) Upload(ctx context.Context, meta Photo, r io.Reader) (Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return Photo{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return Photo{}, ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Photo{}, fmt.Errorf("%w: detected %s", ErrNotAnImage, contentType)
	}

	meta.Src = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if meta.Alt == "" {
		meta.Alt = meta.Title
	}
	return s.photos.Add(ctx, meta)
}

func (s *Service) Add(ctx context.Context, photo Photo) (Photo, error) {
	if photo.Alt == "" {
		photo.Alt = photo.Title
	}
	return s.photos.Add(ctx, photo)
}

func (s *Service) Update(ctx context.Context, id collection.ID, patch map[string]any) (Photo, error) {
	return s.photos.Update(ctx, id, patch)
}

func (s *Service) Remove(ctx context.Context, id collection.ID) (bool, error) {
	return s.photos.Remove(ctx, id)
}

func (s *Service) List(ctx context.Context, filter collection.Filter) ([]Photo, error) {
	return s.photos.List(ctx, filter)
}

func (s *Service) All(ctx context.Context) ([]Photo, error) {
	return s.photos.All(ctx)
}

func (s *Service) ReplaceAll(ctx context.Context, photos []Photo) error {
	return s.photos.ReplaceAll(ctx, photos)
}

func (s *Service) Purge(ctx context.Context) error {
	return s.photos.Purge(ctx)
}
