package notes

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = page.WithPage(context.Background(), page.Notes)

func setup(t *testing.T) (*ServiceImpl, *storage.RepositoryStub, *utils.MockClock) {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)}
	repo := storage.NewRepositoryStub()
	facade := storage.NewService(repo, event_bus.NewEventBus(), clock, storage.Config{})
	share := sharing.NewService(facade, notification.NewNotifier(clock, time.Minute))
	return NewServiceImpl(facade, share, clock), repo, clock
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"tinta", "sala", "urgente"}, SplitTags(" tinta, sala,, urgente ,"))
	assert.Empty(t, SplitTags(""))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]Note{
		{Category: CategoryShopping, Priority: PriorityHigh},
		{Category: CategoryShopping, Priority: PriorityLow},
		{Category: "jardim", Priority: PriorityLow},
	})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByCategory[CategoryShopping])
	assert.Equal(t, 1, stats.ByCategory["jardim"])
	assert.Equal(t, map[Priority]int{PriorityHigh: 1, PriorityMedium: 0, PriorityLow: 2}, stats.ByPriority)
}

func TestService_AddPrependsAndDefaults(t *testing.T) {
	service, _, clock := setup(t)

	first, err := service.Add(ctx, Note{Title: "Orçamento pintura"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = service.Add(ctx, Note{Title: "Ligar para mudança", Category: CategoryMoving, Priority: PriorityHigh})
	require.NoError(t, err)

	all, err := service.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ligar para mudança", all[0].Title)
	assert.Equal(t, PriorityMedium, first.Priority)
	assert.Equal(t, CategoryOther, first.Category)
	assert.Nil(t, first.UpdatedAt)
	assert.Equal(t, []string{}, first.Tags)
}

func TestService_AddRejectsInvalid(t *testing.T) {
	service, _, _ := setup(t)

	_, err := service.Add(ctx, Note{Title: "  "})
	assert.ErrorIs(t, err, collection.ErrInvalid)

	_, err = service.Add(ctx, Note{Title: "x", Priority: "urgente"})
	assert.ErrorIs(t, err, collection.ErrInvalid)
}

func TestService_UpdateStampsUpdatedAt(t *testing.T) {
	service, _, clock := setup(t)
	note, err := service.Add(ctx, Note{Title: "Medidas"})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	updated, err := service.Update(ctx, note.ID, map[string]any{"content": "sala 4x5"})

	require.NoError(t, err)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, clock.Now(), *updated.UpdatedAt)
	assert.Equal(t, note.CreatedAt, updated.CreatedAt)
}

func TestService_Search(t *testing.T) {
	service, _, _ := setup(t)
	_, _ = service.Add(ctx, Note{Title: "Cortinas", Content: "Medir a janela"})
	_, _ = service.Add(ctx, Note{Title: "Compras", Tags: []string{"Mercado"}})

	t.Run("should match content", func(t *testing.T) {
		got, err := service.Search(ctx, "JANELA")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Cortinas", got[0].Title)
	})

	t.Run("should match tags", func(t *testing.T) {
		got, err := service.Search(ctx, "mercado")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestService_RenderHTMLSanitizes(t *testing.T) {
	service, _, _ := setup(t)
	note, err := service.Add(ctx, Note{Title: "Lista", Content: "# Sala\n\n- **sofá**\n\n<script>alert(1)</script>"})
	require.NoError(t, err)

	html, err := service.RenderHTML(ctx, note.ID)

	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Sala</h1>")
	assert.Contains(t, html, "<strong>sofá</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestService_MigratesLegacyNotes(t *testing.T) {
	service, repo, _ := setup(t)
	repo.Raw("apartmentNotes", `[{"id":"1700000000001","title":"Antiga","content":"","category":"compras","priority":"baixa","tags":[],"createdAt":"2024-01-02T10:00:00.000Z","updatedAt":null}]`)

	all, err := service.All(ctx)

	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, collection.ID("1700000000001"), all[0].ID)
	_, legacyLeft, _ := repo.Get(ctx, "apartmentNotes")
	assert.False(t, legacyLeft)
}

func TestNotesHandler(t *testing.T) {
	service, _, _ := setup(t)
	handler := NewNotesHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/notes", handler.GetAll).Methods("GET")
	router.HandleFunc("/api/notes", handler.Create).Methods("POST")
	router.HandleFunc("/api/notes/stats", handler.GetStats).Methods("GET")
	router.HandleFunc("/api/notes/{id}", handler.Update).Methods("PATCH")
	router.HandleFunc("/api/notes/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/api/notes/{id}/html", handler.GetHTML).Methods("GET")

	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"title":"Pintura","content":"*azul*","category":"decoracao","priority":"alta","tags":["sala"]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created NoteDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Decoração", created.CategoryName)

	t.Run("should filter by category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notes?category=compras", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("should accept comma separated tags", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/notes/"+created.ID, strings.NewReader(`{"tags":"sala, tinta"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var updated NoteDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, []string{"sala", "tinta"}, updated.Tags)
		assert.NotEmpty(t, updated.UpdatedAt)
	})

	t.Run("should render html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notes/"+created.ID+"/html", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<em>azul</em>")
	})

	t.Run("should report stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notes/stats", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"total":1,"byCategory":{"decoracao":1},"byPriority":{"alta":1,"media":0,"baixa":0}}`, rr.Body.String())
	})

	t.Run("should delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/notes/"+created.ID, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/notes/"+created.ID, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
