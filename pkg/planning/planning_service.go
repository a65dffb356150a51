package planning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/page"
	"github.com/moveplan/moveplan/pkg/sharing"
	"github.com/moveplan/moveplan/pkg/storage"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	StorageKey     = "planning-items"
	legacyRoomsKey = "camilly-room-data"
)

var ErrUnknownRoom = errors.New("room has no items")

// SharedItem is what other pages hand over under "new-items".
type SharedItem struct {
	Room     string `json:"room"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// BudgetItem is the shape the budget shares under "budget-items".
type BudgetItem struct {
	Name      string           `json:"name"`
	Room      string           `json:"room"`
	Category  string           `json:"category"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Purchased bool             `json:"purchased"`
}

type RoomStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type RoomExport struct {
	Room       string    `json:"room"`
	Items      []Item    `json:"items"`
	Stats      RoomStats `json:"stats"`
	ExportDate time.Time `json:"exportDate"`
}

type PlanningExport struct {
	Rooms          map[string][]Item `json:"rooms"`
	TotalItems     int               `json:"totalItems"`
	CompletedItems int               `json:"completedItems"`
	LastUpdate     time.Time         `json:"lastUpdate"`
}

type Service interface {
	Add(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id collection.ID, patch map[string]any) (Item, error)
	Remove(ctx context.Context, id collection.ID) (bool, error)
	Toggle(ctx context.Context, id collection.ID) (Item, error)
	List(ctx context.Context, room string, filter collection.Filter) ([]Item, error)
	All(ctx context.Context) ([]Item, error)
	ReplaceAll(ctx context.Context, items []Item) error
	Purge(ctx context.Context) error
	Progress(ctx context.Context) ([]RoomProgress, error)
	ImportSharedItems(ctx context.Context) (int, error)
	ImportFromBudget(ctx context.Context) (int, error)
	ShareRoom(ctx context.Context, room string) (RoomExport, error)
	SharePlanning(ctx context.Context) (PlanningExport, error)
	SaveDetails(ctx context.Context, details Details) (Details, error)
	GetDetails(ctx context.Context, id collection.ID) (Details, error)
	ListDetails(ctx context.Context, room string, filter collection.Filter) ([]Details, error)
	SaveDraft(ctx context.Context, draft Details) (bool, error)
	LoadDraft(ctx context.Context) (*Details, error)
	ClearDraft(ctx context.Context) error
}

type ServiceImpl struct {
	items    *collection.Manager[Item]
	details  *collection.Manager[Details]
	storage  storage.Service
	sharing  sharing.Service
	notifier *notification.Notifier
	clock    utils.Clock
}

func NewServiceImpl(storage storage.Service, sharing sharing.Service, notifier *notification.Notifier, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		items:    collection.NewManager(storage, clock, itemSpec),
		details:  collection.NewManager(storage, clock, detailsSpec),
		storage:  storage,
		sharing:  sharing,
		notifier: notifier,
		clock:    clock,
	}
}

var itemSpec = collection.Spec[Item]{
	Key:          StorageKey,
	LegacyKeys:   []string{legacyRoomsKey},
	DecodeLegacy: decodeLegacyRooms,
	GetID:        func(i Item) collection.ID { return i.ID },
	SetID:        func(i *Item, id collection.ID) { i.ID = id },
	Fields: map[string]func(Item) string{
		"room":     func(i Item) string { return i.Room },
		"category": func(i Item) string { return i.Category },
	},
	SearchText: func(i Item) []string { return []string{i.Text, i.Category} },
	Touch:      func(i *Item, _ time.Time, _ bool) { i.Room = normalizeRoom(i.Room) },
	Seed:       seedItems,
	Validate:   validateItem,
}

func normalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

func validateItem(i Item) error {
	if strings.TrimSpace(i.Room) == "" {
		return fmt.Errorf("%w: item room is required", collection.ErrInvalid)
	}
	if strings.TrimSpace(i.Text) == "" {
		return fmt.Errorf("%w: item text is required", collection.ErrInvalid)
	}
	return nil
}

func (s *ServiceImpl) Add(ctx context.Context, item Item) (Item, error) {
	return s.items.Add(ctx, item)
}

func (s *ServiceImpl) Update(ctx context.Context, id collection.ID, patch map[string]any) (Item, error) {
	return s.items.Update(ctx, id, patch)
}

// Remove also drops the detailed record saved with the item, if any.
func (s *ServiceImpl) Remove(ctx context.Context, id collection.ID) (bool, error) {
	removed, err := s.items.Remove(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.removeDetails(ctx, id)
	return true, nil
}

func (s *ServiceImpl) Toggle(ctx context.Context, id collection.ID) (Item, error) {
	return s.items.Mutate(ctx, id, func(item *Item) error {
		item.Completed = !item.Completed
		return nil
	})
}

// List narrows by room first, then applies filter.
func (s *ServiceImpl) List(ctx context.Context, room string, filter collection.Filter) ([]Item, error) {
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if room == "" || strings.EqualFold(room, collection.AllValues) {
		return items, nil
	}
	return slices.DeleteFunc(items, func(i Item) bool { return !strings.EqualFold(i.Room, room) }), nil
}

func (s *ServiceImpl) All(ctx context.Context) ([]Item, error) {
	return s.items.All(ctx)
}

func (s *ServiceImpl) ReplaceAll(ctx context.Context, items []Item) error {
	return s.items.ReplaceAll(ctx, items)
}

func (s *ServiceImpl) Purge(ctx context.Context) error {
	return s.items.Purge(ctx)
}

func (s *ServiceImpl) Progress(ctx context.Context) ([]RoomProgress, error) {
	items, err := s.items.All(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeProgress(items), nil
}

// ImportSharedItems appends the items another page left under "new-items" and
// removes the shared entry.
func (s *ServiceImpl) ImportSharedItems(ctx context.Context) (int, error) {
	envelope, err := s.sharing.GetSharedEnvelope(ctx, sharing.NewItemsKey)
	if err != nil {
		return 0, err
	}
	if envelope == nil || !envelope.HasPayload() {
		return 0, nil
	}
	var shared []SharedItem
	if err := envelope.Decode(&shared); err != nil {
		return 0, fmt.Errorf("failed to read shared items: %w", err)
	}

	added := 0
	_, err = s.items.Transform(ctx, func(items []Item) ([]Item, bool, error) {
		for _, si := range shared {
			room := normalizeRoom(si.Room)
			if room == "" || strings.TrimSpace(si.Text) == "" {
				continue
			}
			items = append(items, Item{ID: collection.NewID(), Room: room, Text: si.Text, Category: si.Category})
			added++
		}
		return items, added > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.sharing.ClearSharedData(ctx, sharing.NewItemsKey); err != nil {
		log.Warnf("imported shared items but could not clear them: %v", err)
	}

	if added > 0 {
		s.notifier.Notifyf(notification.Success, "%d item(s) added from %s", added, page.OrDefault(envelope.SourcePage).DisplayName())
	}
	return added, nil
}

// ImportFromBudget adds the budget products tied to a room, skipping names the
// room already lists (case-insensitive). Purchased products arrive completed.
func (s *ServiceImpl) ImportFromBudget(ctx context.Context) (int, error) {
	data, err := s.sharing.GetSharedData(ctx, sharing.BudgetItemsKey)
	if err != nil {
		return 0, err
	}
	if data == nil {
		s.notifier.Notify(notification.Info, "No budget items to import")
		return 0, nil
	}
	var budgetItems []BudgetItem
	if err := json.Unmarshal(data, &budgetItems); err != nil {
		return 0, fmt.Errorf("failed to read budget items: %w", err)
	}

	imported := 0
	_, err = s.items.Transform(ctx, func(items []Item) ([]Item, bool, error) {
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			seen[item.Room+"\x00"+strings.ToLower(item.Text)] = true
		}
		for _, bi := range budgetItems {
			room := normalizeRoom(bi.Room)
			if room == "" || bi.Name == "" {
				continue
			}
			key := room + "\x00" + strings.ToLower(bi.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, Item{
				ID:        collection.NewID(),
				Room:      room,
				Text:      bi.Name,
				Completed: bi.Purchased,
				Category:  bi.Category,
				Price:     bi.Price,
			})
			imported++
		}
		return items, imported > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.sharing.ClearSharedData(ctx, sharing.BudgetItemsKey); err != nil {
		log.Warnf("imported budget items but could not clear them: %v", err)
	}

	if imported > 0 {
		s.notifier.Notifyf(notification.Success, "%d item(s) imported from the budget", imported)
	} else {
		s.notifier.Notify(notification.Info, "Every budget item is already listed")
	}
	return imported, nil
}

func (s *ServiceImpl) ShareRoom(ctx context.Context, room string) (RoomExport, error) {
	items, err := s.List(ctx, room, collection.Filter{})
	if err != nil {
		return RoomExport{}, err
	}
	if len(items) == 0 {
		return RoomExport{}, fmt.Errorf("%w: %s", ErrUnknownRoom, room)
	}

	export := RoomExport{Room: room, Items: items, ExportDate: s.clock.Now()}
	for _, item := range items {
		export.Stats.Total++
		if item.Completed {
			export.Stats.Completed++
		}
	}
	export.Stats.Pending = export.Stats.Total - export.Stats.Completed

	if err := s.sharing.ShareData(ctx, sharing.RoomKey(room), export); err != nil {
		return RoomExport{}, err
	}
	return export, nil
}

func (s *ServiceImpl) SharePlanning(ctx context.Context) (PlanningExport, error) {
	items, err := s.items.All(ctx)
	if err != nil {
		return PlanningExport{}, err
	}
	export := PlanningExport{
		Rooms:      make(map[string][]Item),
		TotalItems: len(items),
		LastUpdate: s.clock.Now(),
	}
	for _, item := range items {
		export.Rooms[item.Room] = append(export.Rooms[item.Room], item)
		if item.Completed {
			export.CompletedItems++
		}
	}
	if err := s.sharing.ShareData(ctx, sharing.PlanningItemsKey, export); err != nil {
		return PlanningExport{}, err
	}
	return export, nil
}
