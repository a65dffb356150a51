package planning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/page"
	"github.com/moveplan/moveplan/pkg/sharing"
	"github.com/moveplan/moveplan/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ctx       = page.WithPage(context.Background(), page.Planning)
	budgetCtx = page.WithPage(context.Background(), page.Budget)
)

type fixture struct {
	service  *ServiceImpl
	sharing  *sharing.ServiceImpl
	repo     *storage.RepositoryStub
	notifier *notification.Notifier
}

func setup(t *testing.T) fixture {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := storage.NewRepositoryStub()
	facade := storage.NewService(repo, event_bus.NewEventBus(), clock, storage.Config{})
	notifier := notification.NewNotifier(clock, time.Minute)
	share := sharing.NewService(facade, notifier)
	return fixture{
		service:  NewServiceImpl(facade, share, notifier, clock),
		sharing:  share,
		repo:     repo,
		notifier: notifier,
	}
}

func TestService_Seed(t *testing.T) {
	f := setup(t)

	items, err := f.service.All(ctx)

	require.NoError(t, err)
	assert.Len(t, items, 31)
	assert.Equal(t, collection.ID("sala-1"), items[0].ID)
	kitchen, err := f.service.List(ctx, RoomKitchen, collection.Filter{Field: "category", Value: "eletros"})
	require.NoError(t, err)
	assert.Len(t, kitchen, 3)
}

func TestService_Toggle(t *testing.T) {
	f := setup(t)

	item, err := f.service.Toggle(ctx, "quarto-1")
	require.NoError(t, err)
	assert.True(t, item.Completed)

	item, err = f.service.Toggle(ctx, "quarto-1")
	require.NoError(t, err)
	assert.False(t, item.Completed)

	_, err = f.service.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestService_UpdateNormalizesRoom(t *testing.T) {
	// given
	f := setup(t)

	// when
	item, err := f.service.Update(ctx, "quarto-1", map[string]any{"room": " Sala "})

	// then
	require.NoError(t, err)
	assert.Equal(t, RoomLivingRoom, item.Room)
	progress, err := f.service.Progress(ctx)
	require.NoError(t, err)
	assert.Len(t, progress, len(Rooms()))
	assert.Equal(t, 7, progress[0].Total)
	assert.Equal(t, 3, progress[1].Total)
}

func TestComputeProgress(t *testing.T) {
	progress := ComputeProgress([]Item{
		{Room: RoomBedroom, Completed: true},
		{Room: RoomBedroom},
		{Room: "escritorio", Completed: true},
	})

	require.Len(t, progress, 5)
	assert.Equal(t, RoomProgress{Room: RoomLivingRoom, Name: "Sala"}, progress[0])
	assert.Equal(t, RoomProgress{Room: RoomBedroom, Name: "Quarto", Total: 2, Completed: 1, Pending: 1, Percent: 50}, progress[1])
	assert.Equal(t, "escritorio", progress[4].Room)
	assert.Equal(t, 100.0, progress[4].Percent)
}

func TestDecodeRooms(t *testing.T) {
	t.Run("should flatten the legacy room map with room scoped ids", func(t *testing.T) {
		items, err := DecodeRooms([]byte(`{"varanda":[{"id":1,"text":"Plantas","completed":true}],"sala":[{"id":1,"text":"Sofá","completed":false}]}`))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, Item{ID: "sala-1", Room: "sala", Text: "Sofá"}, items[0])
		assert.Equal(t, Item{ID: "varanda-1", Room: "varanda", Text: "Plantas", Completed: true}, items[1])
	})

	t.Run("should accept the flat list", func(t *testing.T) {
		items, err := DecodeRooms([]byte(`[{"id":"a","room":"sala","text":"Sofá"}]`))
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("should reject anything else", func(t *testing.T) {
		_, err := DecodeRooms([]byte(`"sala"`))
		assert.Error(t, err)
	})
}

func TestService_MigratesLegacyRoomMap(t *testing.T) {
	f := setup(t)
	f.repo.Raw("camilly-room-data", `{"sala":[{"id":1,"text":"Sofá","completed":true}],"escritorio":[{"id":1,"text":"Mesa"}]}`)

	items, err := f.service.All(ctx)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, collection.ID("sala-1"), items[0].ID)
	assert.Equal(t, collection.ID("escritorio-1"), items[1].ID)
	_, legacyLeft, _ := f.repo.Get(ctx, "camilly-room-data")
	assert.False(t, legacyLeft)
}

func TestService_ImportSharedItems(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.sharing.ShareData(budgetCtx, sharing.NewItemsKey, []SharedItem{
		{Room: "Sala", Text: "Luminária"},
		{Room: "", Text: "sem cômodo"},
	}))

	// when
	added, err := f.service.ImportSharedItems(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	living, err := f.service.List(ctx, RoomLivingRoom, collection.Filter{Query: "luminária"})
	require.NoError(t, err)
	assert.Len(t, living, 1)
	assert.Equal(t, "1 item(s) added from Orçamentos", f.notifier.Live()[0].Message)

	again, err := f.service.ImportSharedItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestService_ImportFromBudget(t *testing.T) {
	f := setup(t)
	price := decimal.RequireFromString("95.00")
	require.NoError(t, f.sharing.ShareData(budgetCtx, sharing.BudgetItemsKey, []BudgetItem{
		{Name: "cama BAÚ", Room: RoomBedroom, Category: "Quarto"},
		{Name: "Tapete", Room: RoomBedroom, Category: "Decoração", Price: &price, Purchased: true},
		{Name: "Tapete", Room: RoomBedroom},
		{Name: "Sem cômodo"},
	}))

	// when
	imported, err := f.service.ImportFromBudget(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	rugs, err := f.service.List(ctx, RoomBedroom, collection.Filter{Query: "tapete"})
	require.NoError(t, err)
	require.Len(t, rugs, 1)
	assert.True(t, rugs[0].Completed)
	require.NotNil(t, rugs[0].Price)
	assert.True(t, rugs[0].Price.Equal(price))

	data, err := f.sharing.GetSharedData(ctx, sharing.BudgetItemsKey)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestService_ShareRoom(t *testing.T) {
	f := setup(t)
	_, err := f.service.Toggle(ctx, "varanda-1")
	require.NoError(t, err)

	export, err := f.service.ShareRoom(ctx, RoomBalcony)

	require.NoError(t, err)
	assert.Equal(t, RoomStats{Total: 3, Completed: 1, Pending: 2}, export.Stats)
	data, err := f.sharing.GetSharedData(ctx, sharing.RoomKey(RoomBalcony))
	require.NoError(t, err)
	var shared RoomExport
	require.NoError(t, json.Unmarshal(data, &shared))
	assert.Equal(t, "varanda", shared.Room)
	assert.Len(t, shared.Items, 3)

	t.Run("should fail for a room without items", func(t *testing.T) {
		_, err := f.service.ShareRoom(ctx, "garagem")
		assert.ErrorIs(t, err, ErrUnknownRoom)
	})
}

func TestService_SharePlanning(t *testing.T) {
	f := setup(t)
	_, err := f.service.Toggle(ctx, "sala-2")
	require.NoError(t, err)

	export, err := f.service.SharePlanning(ctx)

	require.NoError(t, err)
	assert.Equal(t, 31, export.TotalItems)
	assert.Equal(t, 1, export.CompletedItems)
	assert.Len(t, export.Rooms[RoomKitchen], 18)
}

func TestPlanningHandler(t *testing.T) {
	f := setup(t)
	handler := NewPlanningHandler(f.service)
	router := mux.NewRouter()
	router.HandleFunc("/api/planning/items", handler.GetAll).Methods("GET")
	router.HandleFunc("/api/planning/items", handler.Create).Methods("POST")
	router.HandleFunc("/api/planning/items/{id}/toggle", handler.Toggle).Methods("POST")
	router.HandleFunc("/api/planning/progress", handler.GetProgress).Methods("GET")
	router.HandleFunc("/api/planning/import/{source}", handler.Import).Methods("POST")

	t.Run("should list one room", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/planning/items?room=quarto", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var items []ItemDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
		assert.Len(t, items, 4)
		assert.Equal(t, "Quarto", items[0].RoomName)
	})

	t.Run("should create an item in a free-form room", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/planning/items", strings.NewReader(`{"room":"Escritorio","text":"Cadeira","price":450.5}`)))
		require.Equal(t, http.StatusCreated, rr.Code)
		var item ItemDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &item))
		assert.Equal(t, "escritorio", item.Room)
		require.NotNil(t, item.Price)
		assert.Equal(t, 450.5, *item.Price)
	})

	t.Run("should reject an item without room", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/planning/items", strings.NewReader(`{"text":"Cadeira"}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should toggle", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/planning/items/sala-1/toggle", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"completed":true`)
	})

	t.Run("should report progress per room", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/planning/progress", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var progress []RoomProgress
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
		require.Len(t, progress, 5)
		assert.Equal(t, 1, progress[0].Completed)
	})

	t.Run("should reject unknown import source", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/planning/import/ftp", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
