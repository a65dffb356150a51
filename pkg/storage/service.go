package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/page"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPrefix    = "moveplan-app-"
	DefaultRetention = 30 * 24 * time.Hour
)

// Service is the persistence facade every domain manager writes through.
type Service interface {
	Save(ctx context.Context, key string, payload any, opts ...SaveOption) (Envelope, error)
	Load(ctx context.Context, key string) (*Envelope, error)
	LoadInto(ctx context.Context, key string, dst any) (bool, error)
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
	ExportAll(ctx context.Context) (map[string]Envelope, error)
	ImportAll(ctx context.Context, entries map[string]Envelope) error
	Cleanup(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
	LoadLegacy(ctx context.Context, rawKey string) ([]byte, bool, error)
	RemoveLegacy(ctx context.Context, rawKey string) error
}

// SaveOption adjusts the envelope written by Save.
type SaveOption func(*Envelope)

func WithExpiry(at time.Time) SaveOption {
	return func(e *Envelope) { e.ExpiresAt = &at }
}

func WithTarget(target string) SaveOption {
	return func(e *Envelope) { e.Target = target }
}

func AsShared() SaveOption {
	return func(e *Envelope) { e.Shared = true }
}

func AsImported(at time.Time) SaveOption {
	return func(e *Envelope) {
		e.Imported = true
		e.ImportDate = &at
	}
}

type Config struct {
	Prefix      string
	Retention   time.Duration
	DefaultPage page.Page
}

type ServiceImpl struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
	cfg   Config
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock, cfg Config) *ServiceImpl {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.DefaultPage == "" {
		cfg.DefaultPage = page.Default
	}
	return &ServiceImpl{repo: repo, bus: bus, clock: clock, cfg: cfg}
}

func (s *ServiceImpl) namespaced(key string) string {
	return s.cfg.Prefix + key
}

func (s *ServiceImpl) sourcePage(ctx context.Context) page.Page {
	p, err := page.Current(ctx)
	if err != nil {
		return s.cfg.DefaultPage
	}
	return p
}

func (s *ServiceImpl) Save(ctx context.Context, key string, payload any, opts ...SaveOption) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("could not serialize %s: %w", key, err)
		s.fail(ctx, key, "save", err)
		return Envelope{}, err
	}

	envelope := Envelope{
		Payload:    data,
		Timestamp:  s.clock.Now(),
		SourcePage: string(s.sourcePage(ctx)),
		Version:    EnvelopeVersion,
	}
	for _, opt := range opts {
		opt(&envelope)
	}

	stored, err := json.Marshal(envelope)
	if err != nil {
		err = fmt.Errorf("could not serialize envelope %s: %w", key, err)
		s.fail(ctx, key, "save", err)
		return Envelope{}, err
	}

	if err := s.repo.Set(ctx, s.namespaced(key), string(stored)); err != nil {
		err = fmt.Errorf("could not save %s: %w", key, err)
		s.fail(ctx, key, "save", err)
		return Envelope{}, err
	}

	s.publish(ctx, event_bus.StorageSavedType, event_bus.StorageSaved{
		Key:        key,
		SourcePage: envelope.SourcePage,
		Timestamp:  envelope.Timestamp,
		ExpiresAt:  envelope.ExpiresAt,
		Shared:     envelope.Shared,
	})
	return envelope, nil
}

func (s *ServiceImpl) Load(ctx context.Context, key string) (*Envelope, error) {
	raw, ok, err := s.repo.Get(ctx, s.namespaced(key))
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		log.Warnf("ignoring unreadable entry %s: %v", key, err)
		return nil, nil
	}

	if envelope.Expired(s.clock.Now()) {
		log.Debugf("entry %s expired at %s", key, envelope.ExpiresAt)
		if err := s.repo.Delete(ctx, s.namespaced(key)); err != nil {
			log.Warnf("could not remove expired entry %s: %v", key, err)
		} else {
			s.publish(ctx, event_bus.StorageRemovedType, event_bus.StorageRemoved{Key: key, Expired: true})
		}
		return nil, nil
	}
	return &envelope, nil
}

func (s *ServiceImpl) LoadInto(ctx context.Context, key string, dst any) (bool, error) {
	envelope, err := s.Load(ctx, key)
	if err != nil {
		return false, err
	}
	if envelope == nil || !envelope.HasPayload() {
		return false, nil
	}
	if err := envelope.Decode(dst); err != nil {
		log.Warnf("ignoring entry %s with unexpected shape: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *ServiceImpl) Remove(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, s.namespaced(key)); err != nil {
		err = fmt.Errorf("could not remove %s: %w", key, err)
		s.fail(ctx, key, "remove", err)
		return err
	}
	s.publish(ctx, event_bus.StorageRemovedType, event_bus.StorageRemoved{Key: key})
	return nil
}

func (s *ServiceImpl) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.repo.Keys(ctx, s.cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("could not list keys: %w", err)
	}
	logical := make([]string, 0, len(keys))
	for _, k := range keys {
		logical = append(logical, strings.TrimPrefix(k, s.cfg.Prefix))
	}
	return logical, nil
}

func (s *ServiceImpl) ExportAll(ctx context.Context) (map[string]Envelope, error) {
	keys, err := s.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]Envelope, len(keys))
	for _, key := range keys {
		envelope, err := s.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if envelope != nil {
			entries[key] = *envelope
		}
	}
	return entries, nil
}

// ImportAll re-saves every entry carrying a payload. It continues past failures
// and returns them joined; entries already written stay written.
func (s *ServiceImpl) ImportAll(ctx context.Context, entries map[string]Envelope) error {
	importDate := s.clock.Now()
	var errs []error
	imported := 0
	for key, envelope := range entries {
		if !envelope.HasPayload() {
			continue
		}
		opts := []SaveOption{AsImported(importDate)}
		if envelope.ExpiresAt != nil {
			opts = append(opts, WithExpiry(*envelope.ExpiresAt))
		}
		if envelope.Target != "" {
			opts = append(opts, WithTarget(envelope.Target))
		}
		if envelope.Shared {
			opts = append(opts, AsShared())
		}
		if _, err := s.Save(ctx, key, envelope.Payload, opts...); err != nil {
			errs = append(errs, err)
			continue
		}
		imported++
	}
	log.Infof("imported %d of %d entries", imported, len(entries))
	return errors.Join(errs...)
}

// Cleanup deletes entries older than the retention window, measured from their
// write timestamp, and entries whose expiry has passed.
func (s *ServiceImpl) Cleanup(ctx context.Context) (int, error) {
	keys, err := s.repo.Keys(ctx, s.cfg.Prefix)
	if err != nil {
		return 0, fmt.Errorf("could not list keys: %w", err)
	}
	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.Retention)
	removed := 0
	for _, namespaced := range keys {
		raw, ok, err := s.repo.Get(ctx, namespaced)
		if err != nil {
			return removed, err
		}
		if !ok {
			continue
		}
		var envelope Envelope
		if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
			continue
		}
		if !envelope.Timestamp.Before(cutoff) && !envelope.Expired(now) {
			continue
		}
		if err := s.repo.Delete(ctx, namespaced); err != nil {
			return removed, fmt.Errorf("could not remove %s: %w", namespaced, err)
		}
		removed++
		s.publish(ctx, event_bus.StorageRemovedType, event_bus.StorageRemoved{
			Key:     strings.TrimPrefix(namespaced, s.cfg.Prefix),
			Expired: envelope.Expired(now),
		})
	}
	log.Infof("cleanup removed %d entries older than %s", removed, cutoff.Format(time.RFC3339))
	return removed, nil
}

func (s *ServiceImpl) Clear(ctx context.Context) (int, error) {
	keys, err := s.ListKeys(ctx)
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

// LoadLegacy reads a key written directly, without namespace or envelope, by
// the first version of the dashboard.
func (s *ServiceImpl) LoadLegacy(ctx context.Context, rawKey string) ([]byte, bool, error) {
	raw, ok, err := s.repo.Get(ctx, rawKey)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *ServiceImpl) RemoveLegacy(ctx context.Context, rawKey string) error {
	return s.repo.Delete(ctx, rawKey)
}

func (s *ServiceImpl) fail(ctx context.Context, key, operation string, err error) {
	log.Error(err)
	s.publish(ctx, event_bus.StorageFailedType, event_bus.StorageFailed{Key: key, Operation: operation, Err: err})
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	// Subscribers must not be able to cancel or fail the storage operation.
	if err := s.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), eventType, data)); err != nil {
		log.Warnf("storage event %s not fully delivered: %v", eventType, err)
	}
}
