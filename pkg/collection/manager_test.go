package collection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type card struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var cardSpec = Spec[card]{
	Key:        "cards",
	LegacyKeys: []string{"oldCards"},
	GetID:      func(c card) ID { return c.ID },
	SetID:      func(c *card, id ID) { c.ID = id },
	Fields: map[string]func(card) string{
		"category": func(c card) string { return c.Category },
	},
	SearchText: func(c card) []string { return append([]string{c.Title, c.Body}, c.Tags...) },
	Touch: func(c *card, now time.Time, _ bool) {
		c.UpdatedAt = now
	},
}

func setup(t *testing.T, spec Spec[card]) (*Manager[card], *storage.ServiceImpl, *storage.RepositoryStub, *utils.MockClock) {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)}
	repo := storage.NewRepositoryStub()
	facade := storage.NewService(repo, event_bus.NewEventBus(), clock, storage.Config{})
	return NewManager(facade, clock, spec), facade, repo, clock
}

func TestManager_AddAndList(t *testing.T) {
	manager, _, _, _ := setup(t, cardSpec)

	first, err := manager.Add(ctx, card{Title: "Buy paint", Category: "compras"})
	require.NoError(t, err)
	_, err = manager.Add(ctx, card{Title: "Call movers", Body: "Ask for a Saturday", Category: "mudanca", Tags: []string{"Urgent"}})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	all, err := manager.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Buy paint", all[0].Title)

	t.Run("should filter by field ignoring case", func(t *testing.T) {
		got, err := manager.List(ctx, Filter{Field: "category", Value: "COMPRAS"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Buy paint", got[0].Title)
	})

	t.Run("should treat all as no filter", func(t *testing.T) {
		got, err := manager.List(ctx, Filter{Field: "category", Value: "all"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("should search titles bodies and tags", func(t *testing.T) {
		got, err := manager.List(ctx, Filter{Query: "saturday"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		got, err = manager.List(ctx, Filter{Query: "urgent"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Call movers", got[0].Title)
	})

	t.Run("should reject unknown fields", func(t *testing.T) {
		_, err := manager.List(ctx, Filter{Field: "color", Value: "red"})
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestManager_Prepend(t *testing.T) {
	spec := cardSpec
	spec.Prepend = true
	manager, _, _, _ := setup(t, spec)

	_, _ = manager.Add(ctx, card{Title: "older"})
	_, _ = manager.Add(ctx, card{Title: "newer"})

	all, err := manager.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", all[0].Title)
}

func TestManager_AddDuplicateID(t *testing.T) {
	manager, _, _, _ := setup(t, cardSpec)
	_, err := manager.Add(ctx, card{ID: "a"})
	require.NoError(t, err)

	_, err = manager.Add(ctx, card{ID: "a"})

	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestManager_Update(t *testing.T) {
	manager, _, _, clock := setup(t, cardSpec)
	added, err := manager.Add(ctx, card{Title: "Draft", Category: "outros", Tags: []string{"x"}})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	t.Run("should change only patched fields and keep the id", func(t *testing.T) {
		updated, err := manager.Update(ctx, added.ID, map[string]any{"title": "Final", "id": "hijack"})
		require.NoError(t, err)

		assert.Equal(t, added.ID, updated.ID)
		assert.Equal(t, "Final", updated.Title)
		assert.Equal(t, "outros", updated.Category)
		assert.Equal(t, []string{"x"}, updated.Tags)
		assert.Equal(t, clock.Now(), updated.UpdatedAt)

		stored, err := manager.Get(ctx, added.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("should reject patches of the wrong type", func(t *testing.T) {
		_, err := manager.Update(ctx, added.ID, map[string]any{"tags": 42})
		assert.ErrorIs(t, err, ErrInvalidPatch)
	})

	t.Run("should report missing records", func(t *testing.T) {
		_, err := manager.Update(ctx, "nope", map[string]any{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManager_Remove(t *testing.T) {
	manager, _, _, _ := setup(t, cardSpec)
	added, _ := manager.Add(ctx, card{Title: "temp"})

	removed, err := manager.Remove(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = manager.Remove(ctx, added.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = manager.Get(ctx, added.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_FailedSaveLeavesCollectionUntouched(t *testing.T) {
	manager, _, repo, _ := setup(t, cardSpec)
	_, err := manager.Add(ctx, card{Title: "kept"})
	require.NoError(t, err)

	repo.FailWrites = errors.New("quota exceeded")
	_, err = manager.Add(ctx, card{Title: "lost"})
	repo.FailWrites = nil

	assert.Error(t, err)
	all, err := manager.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "kept", all[0].Title)
}

func TestManager_LegacyMigration(t *testing.T) {
	manager, facade, repo, _ := setup(t, cardSpec)
	repo.Raw("oldCards", `[{"id":17,"title":"From the old app"},{"title":"No id"}]`)

	all, err := manager.All(ctx)

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ID("17"), all[0].ID)
	assert.NotEmpty(t, all[1].ID)

	_, legacyLeft, _ := repo.Get(ctx, "oldCards")
	assert.False(t, legacyLeft)
	var stored []card
	found, err := facade.LoadInto(ctx, "cards", &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, stored, 2)
}

func TestManager_UnreadableLegacyIsSkipped(t *testing.T) {
	manager, _, repo, _ := setup(t, cardSpec)
	repo.Raw("oldCards", `not json`)

	all, err := manager.All(ctx)

	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestManager_Seed(t *testing.T) {
	spec := cardSpec
	spec.Seed = func() []card { return []card{{ID: "seed", Title: "Example"}} }
	manager, _, _, _ := setup(t, spec)

	all, err := manager.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = manager.Add(ctx, card{Title: "Mine"})
	require.NoError(t, err)
	all, _ = manager.All(ctx)
	assert.Len(t, all, 2)
}

func TestManager_ReplaceAllAndPurge(t *testing.T) {
	manager, _, repo, _ := setup(t, cardSpec)
	_, _ = manager.Add(ctx, card{Title: "old"})
	repo.Raw("oldCards", `[]`)

	require.NoError(t, manager.ReplaceAll(ctx, []card{{Title: "restored"}}))
	all, _ := manager.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "restored", all[0].Title)
	assert.NotEmpty(t, all[0].ID)

	require.NoError(t, manager.Purge(ctx))
	all, _ = manager.All(ctx)
	assert.Empty(t, all)
	_, ok, _ := repo.Get(ctx, "oldCards")
	assert.False(t, ok)
}

func TestManager_ConcurrentAdds(t *testing.T) {
	manager, _, _, _ := setup(t, cardSpec)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Add(ctx, card{Title: "parallel"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := manager.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestID_Unmarshal(t *testing.T) {
	var ids []ID
	err := json.Unmarshal([]byte(`["abc", 12, 1700000000000, null]`), &ids)
	require.NoError(t, err)
	assert.Equal(t, []ID{"abc", "12", "1700000000000", ""}, ids)
}
