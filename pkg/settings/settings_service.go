package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	StorageKey        = "settings"
	legacySettingsKey = "apartmentSettings"
	currencyPath      = "display.currency"
)

var (
	ErrInvalidPath    = errors.New("invalid settings path")
	ErrUnknownSetting = errors.New("unknown setting")
)

// Purger is a collection that can drop everything it stores, legacy copies included.
type Purger interface {
	Purge(ctx context.Context) error
}

type Service interface {
	Get(ctx context.Context) (Document, error)
	Update(ctx context.Context, path string, value any) (Document, error)
	Value(ctx context.Context, path string) (any, error)
	Currency(ctx context.Context) string
	Reset(ctx context.Context) (Document, error)
	Replace(ctx context.Context, doc Document) error
	ClearAllData(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	storage     storage.Service
	notifier    *notification.Notifier
	collections []Purger
}

// NewServiceImpl wires the settings record. ClearAllData also purges every
// collection given here.
func NewServiceImpl(storage storage.Service, notifier *notification.Notifier, collections ...Purger) *ServiceImpl {
	return &ServiceImpl{storage: storage, notifier: notifier, collections: collections}
}

// Get returns the stored settings laid over the defaults, so keys added to the
// defaults later are always present.
func (s *ServiceImpl) Get(ctx context.Context) (Document, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Document(merge(Defaults(), stored)).clone(), nil
}

func (s *ServiceImpl) load(ctx context.Context) (Document, error) {
	var stored Document
	found, err := s.storage.LoadInto(ctx, StorageKey, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if found {
		return stored, nil
	}

	raw, ok, err := s.storage.LoadLegacy(ctx, legacySettingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy settings: %w", err)
	}
	if !ok {
		return Document{}, nil
	}
	legacy := Document{}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		log.Warnf("skipping unreadable legacy settings: %v", err)
		return Document{}, nil
	}
	if _, err := s.storage.Save(ctx, StorageKey, legacy); err != nil {
		return nil, fmt.Errorf("failed to migrate settings: %w", err)
	}
	if err := s.storage.RemoveLegacy(ctx, legacySettingsKey); err != nil {
		log.Warnf("migrated settings but could not remove them: %v", err)
	}
	return legacy, nil
}

// Update sets the value at a dotted path such as "display.currency", creating
// intermediate objects as needed.
func (s *ServiceImpl) Update(ctx context.Context, path string, value any) (Document, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	current := map[string]any(doc)
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidPath, segment)
		}
		current = child
	}
	current[segments[len(segments)-1]] = value

	if _, err := s.storage.Save(ctx, StorageKey, doc); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	log.Debugf("setting %s updated", path)
	return doc, nil
}

// Value looks a single setting up by dotted path.
func (s *ServiceImpl) Value(ctx context.Context, path string) (any, error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get("$."+path, map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, path)
	}
	return value, nil
}

// Currency is the display currency code, BRL when unset or unreadable.
func (s *ServiceImpl) Currency(ctx context.Context) string {
	value, err := s.Value(ctx, currencyPath)
	if err != nil {
		log.Warnf("could not read currency setting: %v", err)
		return "BRL"
	}
	code, ok := value.(string)
	if !ok || code == "" {
		return "BRL"
	}
	return code
}

func (s *ServiceImpl) Reset(ctx context.Context) (Document, error) {
	defaults := Defaults()
	if _, err := s.storage.Save(ctx, StorageKey, defaults); err != nil {
		return nil, fmt.Errorf("failed to reset settings: %w", err)
	}
	s.notifier.Notify(notification.Success, "Settings restored to defaults")
	return defaults, nil
}

// Replace overwrites the stored settings, e.g. when restoring a backup.
func (s *ServiceImpl) Replace(ctx context.Context, doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	if _, err := s.storage.Save(ctx, StorageKey, doc); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ClearAllData removes every namespaced entry and every legacy key the
// collections know about. Returns the number of namespaced entries removed.
func (s *ServiceImpl) ClearAllData(ctx context.Context) (int, error) {
	removed, err := s.storage.Clear(ctx)
	if err != nil {
		s.notifier.Notify(notification.Error, "Could not clear data")
		return removed, fmt.Errorf("failed to clear storage: %w", err)
	}
	for _, c := range s.collections {
		if err := c.Purge(ctx); err != nil {
			s.notifier.Notify(notification.Error, "Could not clear data")
			return removed, err
		}
	}
	if err := s.storage.RemoveLegacy(ctx, legacySettingsKey); err != nil {
		return removed, fmt.Errorf("failed to remove legacy settings: %w", err)
	}
	s.notifier.Notify(notification.Success, "All data cleared")
	log.Infof("cleared %d entries", removed)
	return removed, nil
}

func splitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}
