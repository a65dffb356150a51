package calendar

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/storage"
)

const (
	StorageKey           = "events"
	DefaultUpcomingLimit = 5
)

// MonthView is everything a month page renders.
type MonthView struct {
	Cursor   Cursor
	Label    string
	Previous Cursor
	Next     Cursor
	Cells    []Cell
	Events   []Event
}

type Service struct {
	events *collection.Manager[Event]
	clock  utils.Clock
}

func NewService(storage storage.Service, clock utils.Clock) *Service {
	return &Service{
		events: collection.NewManager(storage, clock, eventSpec),
		clock:  clock,
	}
}

var eventSpec = collection.Spec[Event]{
	Key:        StorageKey,
	LegacyKeys: []string{"apartamento-eventos", "camilly-events"},
	GetID:      func(e Event) collection.ID { return e.ID },
	SetID:      func(e *Event, id collection.ID) { e.ID = id },
	Fields: map[string]func(Event) string{
		"category": func(e Event) string { return string(e.Category) },
	},
	SearchText: func(e Event) []string { return []string{e.Title, e.Description} },
	Seed:       seedEvents,
	Validate:   validateEvent,
}

func validateEvent(e Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: event title is required", collection.ErrInvalid)
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", collection.ErrInvalid, e.Date)
	}
	if e.Time != "" {
		if _, err := time.Parse(TimeLayout, e.Time); err != nil {
			return fmt.Errorf("%w: time %q is not HH:MM", collection.ErrInvalid, e.Time)
		}
	}
	return nil
}

func (s *Service) AddEvent(ctx context.Context, event Event) (Event, error) {
	if event.Category == "" {
		event.Category = CategoryOther
	}
	return s.events.Add(ctx, event)
}

func (s *Service) ModifyEvent(ctx context.Context, id collection.ID, patch map[string]any) (Event, error) {
	return s.events.Update(ctx, id, patch)
}

func (s *Service) DeleteEvent(ctx context.Context, id collection.ID) (bool, error) {
	return s.events.Remove(ctx, id)
}

// GetEvents returns the matching events ordered by date and time.
func (s *Service) GetEvents(ctx context.Context, filter collection.Filter) ([]Event, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortChronologically(events)
	return events, nil
}

func (s *Service) All(ctx context.Context) ([]Event, error) {
	return s.events.All(ctx)
}

func (s *Service) ReplaceAll(ctx context.Context, events []Event) error {
	return s.events.ReplaceAll(ctx, events)
}

func (s *Service) Purge(ctx context.Context) error {
	return s.events.Purge(ctx)
}

func (s *Service) EventsInMonth(ctx context.Context, cursor Cursor) ([]Event, error) {
	all, err := s.GetEvents(ctx, collection.Filter{})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(e Event) bool { return !cursor.Contains(e.Day()) }), nil
}

// GetUpcomingEvents returns up to limit events dated today or later.
func (s *Service) GetUpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", collection.ErrInvalid, limit)
	}
	all, err := s.GetEvents(ctx, collection.Filter{})
	if err != nil {
		return nil, err
	}
	today := s.clock.Now().Format(DateLayout)
	upcoming := slices.DeleteFunc(all, func(e Event) bool { return e.Date < today })
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (s *Service) Month(ctx context.Context, cursor Cursor) (MonthView, error) {
	events, err := s.EventsInMonth(ctx, cursor)
	if err != nil {
		return MonthView{}, err
	}
	return MonthView{
		Cursor:   cursor,
		Label:    cursor.Label(),
		Previous: cursor.Previous(),
		Next:     cursor.Next(),
		Cells:    MonthGrid(cursor, events, s.clock.Now()),
		Events:   events,
	}, nil
}

func sortChronologically(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Time, b.Time))
	})
}
