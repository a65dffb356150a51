package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/budget"
	"github.com/moveplan/moveplan/pkg/calendar"
	"github.com/moveplan/moveplan/pkg/gallery"
	"github.com/moveplan/moveplan/pkg/notes"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/planning"
	"github.com/moveplan/moveplan/pkg/settings"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMalformedBackup    = errors.New("backup is not valid JSON")
	ErrUnrecognizedBackup = errors.New("backup has no recognized section")
)

// Collection is the whole-collection access a backup needs.
type Collection[T any] interface {
	All(ctx context.Context) ([]T, error)
	ReplaceAll(ctx context.Context, items []T) error
}

type SettingsStore interface {
	Get(ctx context.Context) (settings.Document, error)
	Replace(ctx context.Context, doc settings.Document) error
}

type Sources struct {
	Settings SettingsStore
	Budget   Collection[budget.Product]
	Notes    Collection[notes.Note]
	Planning Collection[planning.Item]
	Events   Collection[calendar.Event]
	Photos   Collection[gallery.Photo]
}

// ownedKeys are stored by the collections and travel in their own sections.
var ownedKeys = []string{
	settings.StorageKey,
	budget.StorageKey,
	notes.StorageKey,
	planning.StorageKey,
	calendar.StorageKey,
	gallery.StorageKey,
	ApartmentKey,
}

type Service struct {
	storage  storage.Service
	sources  Sources
	notifier *notification.Notifier
	clock    utils.Clock
}

func NewService(storage storage.Service, sources Sources, notifier *notification.Notifier, clock utils.Clock) *Service {
	return &Service{storage: storage, sources: sources, notifier: notifier, clock: clock}
}

func (s *Service) Export(ctx context.Context) (Document, error) {
	doc := Document{ExportDate: s.clock.Now(), Version: Version}
	var err error
	if doc.Settings, err = s.sources.Settings.Get(ctx); err != nil {
		return Document{}, err
	}
	if doc.Budget, err = s.sources.Budget.All(ctx); err != nil {
		return Document{}, err
	}
	if doc.Notes, err = s.sources.Notes.All(ctx); err != nil {
		return Document{}, err
	}
	if doc.RoomData, err = s.sources.Planning.All(ctx); err != nil {
		return Document{}, err
	}
	if doc.Events, err = s.sources.Events.All(ctx); err != nil {
		return Document{}, err
	}
	if doc.Photos, err = s.sources.Photos.All(ctx); err != nil {
		return Document{}, err
	}

	apartment, err := s.storage.Load(ctx, ApartmentKey)
	if err != nil {
		return Document{}, err
	}
	if apartment != nil && apartment.HasPayload() {
		doc.Apartment = apartment.Payload
	}

	entries, err := s.storage.ExportAll(ctx)
	if err != nil {
		return Document{}, err
	}
	maps.DeleteFunc(entries, func(key string, _ storage.Envelope) bool {
		return slices.Contains(ownedKeys, key)
	})
	doc.Entries = entries

	s.notifier.Notify(notification.Success, "Backup exported")
	return doc, nil
}

// decoded holds the sections found in a backup; nil means absent.
type decoded struct {
	settings  settings.Document
	budget    []budget.Product
	notes     []notes.Note
	roomData  []planning.Item
	events    []calendar.Event
	photos    []gallery.Photo
	apartment map[string]any
	entries   map[string]storage.Envelope
}

// Import restores a backup. Every present section is decoded before anything
// is written, so a malformed file leaves the stored data untouched. Present
// sections replace their collection wholesale; absent ones are left alone.
// Returns the names of the restored sections.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]string, error) {
	d, restored, err := decode(r)
	if err != nil {
		s.notifier.Notifyf(notification.Error, "Could not import backup: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.write(ctx, d); err != nil {
		s.notifier.Notifyf(notification.Error, "Could not import backup: %v", err)
		return nil, err
	}
	s.notifier.Notify(notification.Success, "Backup imported")
	log.Infof("backup restored: %v", restored)
	return restored, nil
}

func decode(r io.Reader) (decoded, []string, error) {
	var d decoded
	data, err := io.ReadAll(r)
	if err != nil {
		return d, nil, fmt.Errorf("failed to read backup: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return d, nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	var restored []string
	decodeSection := func(name string, dst any) error {
		raw, ok := section(fields, name)
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: section %s: %v", ErrMalformedBackup, name, err)
		}
		restored = append(restored, name)
		return nil
	}

	if err := decodeSection("settings", &d.settings); err != nil {
		return d, nil, err
	}
	if err := decodeSection("budget", &d.budget); err != nil {
		return d, nil, err
	}
	if err := decodeSection("notes", &d.notes); err != nil {
		return d, nil, err
	}
	if raw, ok := section(fields, "roomData"); ok {
		items, err := planning.DecodeRooms(raw)
		if err != nil {
			return d, nil, fmt.Errorf("%w: section roomData: %v", ErrMalformedBackup, err)
		}
		d.roomData = items
		restored = append(restored, "roomData")
	}
	if err := decodeSection("events", &d.events); err != nil {
		return d, nil, err
	}
	if err := decodeSection("photos", &d.photos); err != nil {
		return d, nil, err
	}
	if err := decodeSection("apartment", &d.apartment); err != nil {
		return d, nil, err
	}
	if err := decodeSection("entries", &d.entries); err != nil {
		return d, nil, err
	}

	if len(restored) == 0 {
		return d, nil, ErrUnrecognizedBackup
	}
	return d, restored, nil
}

func (s *Service) write(ctx context.Context, d decoded) error {
	// entries first so that the collection sections win over stale copies
	if d.entries != nil {
		maps.DeleteFunc(d.entries, func(key string, _ storage.Envelope) bool {
			return slices.Contains(ownedKeys, key)
		})
		if err := s.storage.ImportAll(ctx, d.entries); err != nil {
			return err
		}
	}
	if d.settings != nil {
		if err := s.sources.Settings.Replace(ctx, d.settings); err != nil {
			return err
		}
	}
	if d.budget != nil {
		if err := s.sources.Budget.ReplaceAll(ctx, d.budget); err != nil {
			return err
		}
	}
	if d.notes != nil {
		if err := s.sources.Notes.ReplaceAll(ctx, d.notes); err != nil {
			return err
		}
	}
	if d.roomData != nil {
		if err := s.sources.Planning.ReplaceAll(ctx, d.roomData); err != nil {
			return err
		}
	}
	if d.events != nil {
		if err := s.sources.Events.ReplaceAll(ctx, d.events); err != nil {
			return err
		}
	}
	if d.photos != nil {
		if err := s.sources.Photos.ReplaceAll(ctx, d.photos); err != nil {
			return err
		}
	}
	if d.apartment != nil {
		if _, err := s.storage.Save(ctx, ApartmentKey, d.apartment); err != nil {
			return err
		}
	}
	return nil
}
