package planning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DetailsKey = "advanced-items-list"
	DraftKey   = "advanced-form-draft"
)

const (
	PriorityHigh   = "alta"
	PriorityMedium = "media"
	PriorityLow    = "baixa"

	StatusPlanned   = "planejado"
	StatusDelivered = "entregue"
)

// Details is the full purchase record behind a checklist item. It shares its
// id with the item it mirrors.
type Details struct {
	ID        collection.ID    `json:"id"`
	Name      string           `json:"name"`
	Room      string           `json:"room"`
	Category  string           `json:"category"`
	Priority  string           `json:"priority"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	MaxPrice  *decimal.Decimal `json:"maxPrice,omitempty"`
	Store     string           `json:"store,omitempty"`
	Payment   string           `json:"payment,omitempty"`
	Brand     string           `json:"brand,omitempty"`
	Model     string           `json:"model,omitempty"`
	Color     string           `json:"color,omitempty"`
	Size      string           `json:"size,omitempty"`
	Specs     string           `json:"specs,omitempty"`
	Deadline  string           `json:"deadline,omitempty"`
	Delivery  string           `json:"delivery,omitempty"`
	Status    string           `json:"status"`
	Quantity  int              `json:"quantity"`
	Notes     string           `json:"notes,omitempty"`
	Links     string           `json:"links,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// IsBlank reports a form nobody has typed into yet.
func (d Details) IsBlank() bool {
	for _, s := range []string{d.Name, d.Room, d.Category, d.Store, d.Payment, d.Brand, d.Model,
		d.Color, d.Size, d.Specs, d.Deadline, d.Delivery, d.Notes, d.Links} {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return (d.Price == nil || d.Price.IsZero()) && (d.MaxPrice == nil || d.MaxPrice.IsZero())
}

// Item is the checklist entry a saved record appears as.
func (d Details) Item() Item {
	return Item{
		ID:        d.ID,
		Room:      d.Room,
		Text:      d.Name,
		Completed: d.Status == StatusDelivered,
		Category:  d.Category,
		Price:     d.Price,
	}
}

func withDefaults(d Details) Details {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Status == "" {
		d.Status = StatusPlanned
	}
	if d.Quantity == 0 {
		d.Quantity = 1
	}
	return d
}

var detailsSpec = collection.Spec[Details]{
	Key:   DetailsKey,
	GetID: func(d Details) collection.ID { return d.ID },
	SetID: func(d *Details, id collection.ID) { d.ID = id },
	Fields: map[string]func(Details) string{
		"room":     func(d Details) string { return d.Room },
		"priority": func(d Details) string { return d.Priority },
		"status":   func(d Details) string { return d.Status },
	},
	SearchText: func(d Details) []string { return []string{d.Name, d.Brand, d.Model, d.Store} },
	Touch: func(d *Details, now time.Time, created bool) {
		d.Room = normalizeRoom(d.Room)
		if created {
			d.Timestamp = now
		}
	},
	Validate: validateDetails,
}

func validateDetails(d Details) error {
	required := []struct{ name, value string }{
		{"name", d.Name}, {"room", d.Room}, {"category", d.Category}, {"priority", d.Priority},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", collection.ErrInvalid, field.name)
		}
	}
	if d.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", collection.ErrInvalid)
	}
	if (d.Price != nil && d.Price.IsNegative()) || (d.MaxPrice != nil && d.MaxPrice.IsNegative()) {
		return fmt.Errorf("%w: prices cannot be negative", collection.ErrInvalid)
	}
	if d.Deadline != "" {
		if _, err := time.Parse(time.DateOnly, d.Deadline); err != nil {
			return fmt.Errorf("%w: deadline %q is not YYYY-MM-DD", collection.ErrInvalid, d.Deadline)
		}
	}
	return nil
}

// SaveDetails stores the record, adds its checklist item and drops the draft.
func (s *ServiceImpl) SaveDetails(ctx context.Context, details Details) (Details, error) {
	details = withDefaults(details)
	if details.ID == "" {
		details.ID = collection.NewID()
	}
	if err := validateDetails(details); err != nil {
		return Details{}, err
	}

	if _, err := s.items.Add(ctx, details.Item()); err != nil {
		return Details{}, fmt.Errorf("failed to add checklist item: %w", err)
	}
	saved, err := s.details.Add(ctx, details)
	if err != nil {
		if _, rmErr := s.items.Remove(ctx, details.ID); rmErr != nil {
			log.Warnf("could not roll back checklist item %s: %v", details.ID, rmErr)
		}
		return Details{}, err
	}

	if err := s.ClearDraft(ctx); err != nil {
		log.Warnf("saved %s but could not clear the draft: %v", saved.ID, err)
	}
	s.notifier.Notify(notification.Success, "Item saved")
	return saved, nil
}

func (s *ServiceImpl) GetDetails(ctx context.Context, id collection.ID) (Details, error) {
	return s.details.Get(ctx, id)
}

// ListDetails returns the records for room, or every record when room is empty.
func (s *ServiceImpl) ListDetails(ctx context.Context, room string, filter collection.Filter) ([]Details, error) {
	records, err := s.details.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if room == "" || strings.EqualFold(room, collection.AllValues) {
		return records, nil
	}
	return slices.DeleteFunc(records, func(d Details) bool { return !strings.EqualFold(d.Room, room) }), nil
}

// SaveDraft keeps the half-filled form. A blank form is not saved.
func (s *ServiceImpl) SaveDraft(ctx context.Context, draft Details) (bool, error) {
	if draft.IsBlank() {
		return false, nil
	}
	if _, err := s.storage.Save(ctx, DraftKey, draft); err != nil {
		return false, fmt.Errorf("failed to save draft: %w", err)
	}
	return true, nil
}

// LoadDraft returns nil when no draft is stored.
func (s *ServiceImpl) LoadDraft(ctx context.Context) (*Details, error) {
	var draft Details
	found, err := s.storage.LoadInto(ctx, DraftKey, &draft)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &draft, nil
}

func (s *ServiceImpl) ClearDraft(ctx context.Context) error {
	return s.storage.Remove(ctx, DraftKey)
}

func (s *ServiceImpl) removeDetails(ctx context.Context, id collection.ID) {
	if _, err := s.details.Remove(ctx, id); err != nil && !errors.Is(err, collection.ErrNotFound) {
		log.Warnf("could not remove details of %s: %v", id, err)
	}
}
