package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestNotifier_Lifetime(t *testing.T) {
	clock := &utils.MockClock{FixedNow: start}
	notifier := NewNotifier(clock, 0)

	notifier.Notify(Success, "Data shared")
	clock.Advance(time.Second)
	notifier.Notify(Error, "Import failed")

	t.Run("should list live notifications newest first", func(t *testing.T) {
		live := notifier.Live()
		require.Len(t, live, 2)
		assert.Equal(t, "Import failed", live[0].Message)
		assert.Equal(t, "Data shared", live[1].Message)
	})

	t.Run("should drop notifications after their lifetime", func(t *testing.T) {
		clock.Advance(2500 * time.Millisecond)
		live := notifier.Live()
		require.Len(t, live, 1)
		assert.Equal(t, Error, live[0].Kind)
	})
}

func TestNotifier_UnknownKindIsInfo(t *testing.T) {
	notifier := NewNotifier(&utils.MockClock{FixedNow: start}, time.Minute)

	n := notifier.Notify(Kind("celebration"), "hello")

	assert.Equal(t, Info, n.Kind)
}

func TestNotifier_NilReceiverIsSilent(t *testing.T) {
	var notifier *Notifier

	assert.NotPanics(t, func() {
		notifier.Notify(Error, "nobody listens")
		notifier.Dismiss(3)
		assert.Empty(t, notifier.Live())
	})
}

func TestNotifier_Capacity(t *testing.T) {
	notifier := NewNotifier(&utils.MockClock{FixedNow: start}, time.Hour)
	for i := 0; i < DefaultCapacity+10; i++ {
		notifier.Notifyf(Info, "message %d", i)
	}

	live := notifier.Live()

	assert.Len(t, live, DefaultCapacity)
	assert.Equal(t, "message 59", live[0].Message)
}

func TestNotifier_Dismiss(t *testing.T) {
	notifier := NewNotifier(&utils.MockClock{FixedNow: start}, time.Hour)
	first := notifier.Notify(Info, "one")
	notifier.Notify(Info, "two")

	notifier.Dismiss(first.ID)
	notifier.Dismiss(999)

	live := notifier.Live()
	require.Len(t, live, 1)
	assert.Equal(t, "two", live[0].Message)
}

func TestNotifier_StorageFailures(t *testing.T) {
	bus := event_bus.NewEventBus()
	notifier := NewNotifier(&utils.MockClock{FixedNow: start}, time.Hour)
	notifier.Subscribe(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.StorageFailedType,
		event_bus.StorageFailed{Key: "photos", Err: errors.New("quota exceeded")}))

	require.NoError(t, err)
	live := notifier.Live()
	require.Len(t, live, 1)
	assert.Equal(t, Error, live[0].Kind)
	assert.Contains(t, live[0].Message, "photos")
	assert.Contains(t, live[0].Message, "quota exceeded")
}
