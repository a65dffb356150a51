package sharing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/page"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	keyPrefix = "shared-"
	// LastSharedKey points at the most recent share so other pages can poll for it.
	LastSharedKey = "last-shared"
)

// Well-known logical keys exchanged between pages.
const (
	NewItemsKey      = "new-items"
	BudgetItemsKey   = "budget-items"
	PlanningItemsKey = "planning-items"
)

func RoomKey(room string) string {
	return "room-" + room
}

// SharedKey is the storage key a logical key is shared under.
func SharedKey(logicalKey string) string {
	return keyPrefix + logicalKey
}

type lastShared struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

type Service interface {
	ShareData(ctx context.Context, logicalKey string, payload any) error
	GetSharedData(ctx context.Context, logicalKey string) (json.RawMessage, error)
	GetSharedEnvelope(ctx context.Context, logicalKey string) (*storage.Envelope, error)
	ClearSharedData(ctx context.Context, logicalKey string) error
	CheckForSharedData(ctx context.Context) (*notification.Notification, error)
}

type ServiceImpl struct {
	storage  storage.Service
	notifier *notification.Notifier
}

func NewService(storage storage.Service, notifier *notification.Notifier) *ServiceImpl {
	return &ServiceImpl{storage: storage, notifier: notifier}
}

func (s *ServiceImpl) ShareData(ctx context.Context, logicalKey string, payload any) error {
	_, err := s.storage.Save(ctx, SharedKey(logicalKey), payload, storage.WithTarget(storage.TargetAll), storage.AsShared())
	if err != nil {
		s.notifier.Notify(notification.Error, "Could not share data")
		return fmt.Errorf("failed to share %s: %w", logicalKey, err)
	}
	_, err = s.storage.Save(ctx, LastSharedKey, lastShared{Key: logicalKey, Target: storage.TargetAll})
	if err != nil {
		s.notifier.Notify(notification.Error, "Could not share data")
		return fmt.Errorf("failed to record share of %s: %w", logicalKey, err)
	}
	s.notifier.Notify(notification.Success, "Data shared")
	return nil
}

// GetSharedData returns the payload shared under logicalKey, or nil when nothing
// (or only an expired entry) is there.
func (s *ServiceImpl) GetSharedData(ctx context.Context, logicalKey string) (json.RawMessage, error) {
	envelope, err := s.GetSharedEnvelope(ctx, logicalKey)
	if err != nil || envelope == nil || !envelope.HasPayload() {
		return nil, err
	}
	return envelope.Payload, nil
}

func (s *ServiceImpl) GetSharedEnvelope(ctx context.Context, logicalKey string) (*storage.Envelope, error) {
	envelope, err := s.storage.Load(ctx, SharedKey(logicalKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read shared %s: %w", logicalKey, err)
	}
	return envelope, nil
}

func (s *ServiceImpl) ClearSharedData(ctx context.Context, logicalKey string) error {
	return s.storage.Remove(ctx, SharedKey(logicalKey))
}

// CheckForSharedData looks at the most recent share once. When it was addressed
// to every page, or to the current one, and came from another page, an info
// notification naming the source is emitted and returned.
func (s *ServiceImpl) CheckForSharedData(ctx context.Context) (*notification.Notification, error) {
	envelope, err := s.storage.Load(ctx, LastSharedKey)
	if err != nil {
		return nil, err
	}
	if envelope == nil {
		return nil, nil
	}
	var last lastShared
	if err := envelope.Decode(&last); err != nil {
		log.Warnf("ignoring unreadable share marker: %v", err)
		return nil, nil
	}

	current, _ := page.Current(ctx)
	source := page.OrDefault(envelope.SourcePage)
	addressed := last.Target == storage.TargetAll || page.OrDefault(last.Target) == current
	if !addressed || source == current {
		return nil, nil
	}

	n := s.notifier.Notifyf(notification.Info, "Data received from %s", source.DisplayName())
	return &n, nil
}
