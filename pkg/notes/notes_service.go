package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/sharing"
	"github.com/moveplan/moveplan/pkg/storage"
)

const (
	StorageKey     = "notes"
	legacyNotesKey = "apartmentNotes"
	SharedNotesKey = "notes-data"
)

type Service interface {
	Add(ctx context.Context, note Note) (Note, error)
	Update(ctx context.Context, id collection.ID, patch map[string]any) (Note, error)
	Remove(ctx context.Context, id collection.ID) (bool, error)
	Get(ctx context.Context, id collection.ID) (Note, error)
	List(ctx context.Context, filter collection.Filter) ([]Note, error)
	Search(ctx context.Context, query string) ([]Note, error)
	All(ctx context.Context) ([]Note, error)
	ReplaceAll(ctx context.Context, notes []Note) error
	Purge(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	RenderHTML(ctx context.Context, id collection.ID) (string, error)
	Share(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	notes    *collection.Manager[Note]
	renderer *Renderer
	sharing  sharing.Service
	clock    utils.Clock
}

func NewServiceImpl(storage storage.Service, sharing sharing.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		notes:    collection.NewManager(storage, clock, noteSpec),
		renderer: NewRenderer(),
		sharing:  sharing,
		clock:    clock,
	}
}

var noteSpec = collection.Spec[Note]{
	Key:        StorageKey,
	LegacyKeys: []string{legacyNotesKey},
	GetID:      func(n Note) collection.ID { return n.ID },
	SetID:      func(n *Note, id collection.ID) { n.ID = id },
	Fields: map[string]func(Note) string{
		"category": func(n Note) string { return string(n.Category) },
		"priority": func(n Note) string { return string(n.Priority) },
	},
	SearchText: func(n Note) []string {
		return append([]string{n.Title, n.Content}, n.Tags...)
	},
	Prepend: true,
	Touch: func(n *Note, now time.Time, created bool) {
		if n.Tags == nil {
			n.Tags = []string{}
		}
		if created {
			if n.CreatedAt.IsZero() {
				n.CreatedAt = now
			}
			n.UpdatedAt = nil
			return
		}
		n.UpdatedAt = &now
	},
	Validate: validateNote,
}

func validateNote(n Note) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title is required", collection.ErrInvalid)
	}
	if n.Priority != "" && !n.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", collection.ErrInvalid, n.Priority)
	}
	return nil
}

func (s *ServiceImpl) Add(ctx context.Context, note Note) (Note, error) {
	if note.Priority == "" {
		note.Priority = PriorityMedium
	}
	if note.Category == "" {
		note.Category = CategoryOther
	}
	return s.notes.Add(ctx, note)
}

func (s *ServiceImpl) Update(ctx context.Context, id collection.ID, patch map[string]any) (Note, error) {
	return s.notes.Update(ctx, id, patch)
}

func (s *ServiceImpl) Remove(ctx context.Context, id collection.ID) (bool, error) {
	return s.notes.Remove(ctx, id)
}

func (s *ServiceImpl) Get(ctx context.Context, id collection.ID) (Note, error) {
	return s.notes.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter collection.Filter) ([]Note, error) {
	return s.notes.List(ctx, filter)
}

func (s *ServiceImpl) Search(ctx context.Context, query string) ([]Note, error) {
	return s.notes.List(ctx, collection.Filter{Query: query})
}

func (s *ServiceImpl) All(ctx context.Context) ([]Note, error) {
	return s.notes.All(ctx)
}

func (s *ServiceImpl) ReplaceAll(ctx context.Context, notes []Note) error {
	return s.notes.ReplaceAll(ctx, notes)
}

func (s *ServiceImpl) Purge(ctx context.Context) error {
	return s.notes.Purge(ctx)
}

func (s *ServiceImpl) Stats(ctx context.Context) (Stats, error) {
	all, err := s.notes.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(all), nil
}

func (s *ServiceImpl) RenderHTML(ctx context.Context, id collection.ID) (string, error) {
	note, err := s.notes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	html, err := s.renderer.Render(note.Content)
	if err != nil {
		return "", fmt.Errorf("failed to render note %s: %w", id, err)
	}
	return html, nil
}

type sharedNotes struct {
	Notes      []Note    `json:"notes"`
	TotalNotes int       `json:"totalNotes"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Share publishes the whole board for the other pages.
func (s *ServiceImpl) Share(ctx context.Context) (int, error) {
	all, err := s.notes.All(ctx)
	if err != nil {
		return 0, err
	}
	err = s.sharing.ShareData(ctx, SharedNotesKey, sharedNotes{Notes: all, TotalNotes: len(all), LastUpdate: s.clock.Now()})
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
