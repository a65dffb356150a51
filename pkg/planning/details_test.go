package planning

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wardrobe() Details {
	price := decimal.RequireFromString("1899.90")
	return Details{
		Name:     "Guarda-roupa",
		Room:     "Quarto",
		Category: "Mobília",
		Price:    &price,
		Store:    "Tok&Stok",
		Brand:    "Henn",
		Color:    "Branco",
		Deadline: "2025-07-15",
	}
}

func TestService_SaveDetails(t *testing.T) {
	t.Run("should store the record and mirror it into the checklist", func(t *testing.T) {
		// given
		f := setup(t)

		// when
		saved, err := f.service.SaveDetails(ctx, wardrobe())

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, RoomBedroom, saved.Room)
		assert.Equal(t, PriorityMedium, saved.Priority)
		assert.Equal(t, StatusPlanned, saved.Status)
		assert.Equal(t, 1, saved.Quantity)
		assert.False(t, saved.Timestamp.IsZero())

		bedroom, err := f.service.List(ctx, RoomBedroom, collection.Filter{})
		require.NoError(t, err)
		require.Len(t, bedroom, 5)
		mirrored := bedroom[4]
		assert.Equal(t, saved.ID, mirrored.ID)
		assert.Equal(t, "Guarda-roupa", mirrored.Text)
		assert.False(t, mirrored.Completed)
		require.NotNil(t, mirrored.Price)
		assert.True(t, decimal.RequireFromString("1899.90").Equal(*mirrored.Price))
		assert.Equal(t, "Item saved", f.notifier.Live()[0].Message)
	})

	t.Run("should mark delivered records as completed", func(t *testing.T) {
		f := setup(t)
		details := wardrobe()
		details.Status = StatusDelivered

		saved, err := f.service.SaveDetails(ctx, details)

		require.NoError(t, err)
		progress, err := f.service.Progress(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, progress[1].Completed)
		assert.Equal(t, StatusDelivered, saved.Status)
	})

	t.Run("should reject a record missing required fields", func(t *testing.T) {
		f := setup(t)
		details := wardrobe()
		details.Category = " "

		_, err := f.service.SaveDetails(ctx, details)

		assert.ErrorIs(t, err, collection.ErrInvalid)
		items, err := f.service.All(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 31)
	})

	t.Run("should reject a malformed deadline", func(t *testing.T) {
		f := setup(t)
		details := wardrobe()
		details.Deadline = "15/07/2025"

		_, err := f.service.SaveDetails(ctx, details)

		assert.ErrorIs(t, err, collection.ErrInvalid)
	})

	t.Run("should drop the record with its checklist item", func(t *testing.T) {
		f := setup(t)
		saved, err := f.service.SaveDetails(ctx, wardrobe())
		require.NoError(t, err)

		removed, err := f.service.Remove(ctx, saved.ID)

		require.NoError(t, err)
		assert.True(t, removed)
		_, err = f.service.GetDetails(ctx, saved.ID)
		assert.ErrorIs(t, err, collection.ErrNotFound)
	})
}

func TestService_Draft(t *testing.T) {
	t.Run("should ignore a blank form", func(t *testing.T) {
		f := setup(t)

		saved, err := f.service.SaveDraft(ctx, Details{Priority: PriorityMedium, Status: StatusPlanned, Quantity: 1})

		require.NoError(t, err)
		assert.False(t, saved)
		draft, err := f.service.LoadDraft(ctx)
		require.NoError(t, err)
		assert.Nil(t, draft)
	})

	t.Run("should keep a draft until the record is saved", func(t *testing.T) {
		// given
		f := setup(t)
		saved, err := f.service.SaveDraft(ctx, Details{Name: "Guarda-roupa", Brand: "Henn"})
		require.NoError(t, err)
		require.True(t, saved)

		// when
		draft, err := f.service.LoadDraft(ctx)

		// then
		require.NoError(t, err)
		require.NotNil(t, draft)
		assert.Equal(t, "Henn", draft.Brand)

		_, err = f.service.SaveDetails(ctx, wardrobe())
		require.NoError(t, err)
		draft, err = f.service.LoadDraft(ctx)
		require.NoError(t, err)
		assert.Nil(t, draft)
	})

	t.Run("should clear the draft", func(t *testing.T) {
		f := setup(t)
		_, err := f.service.SaveDraft(ctx, Details{Notes: "medir a parede antes"})
		require.NoError(t, err)

		require.NoError(t, f.service.ClearDraft(ctx))

		draft, err := f.service.LoadDraft(ctx)
		require.NoError(t, err)
		assert.Nil(t, draft)
	})
}

func TestPlanningHandler_Details(t *testing.T) {
	f := setup(t)
	handler := NewPlanningHandler(f.service)
	router := mux.NewRouter()
	router.HandleFunc("/api/planning/details", handler.ListDetails).Methods("GET")
	router.HandleFunc("/api/planning/details", handler.CreateDetails).Methods("POST")
	router.HandleFunc("/api/planning/details/{id}", handler.GetDetails).Methods("GET")
	router.HandleFunc("/api/planning/draft", handler.GetDraft).Methods("GET")
	router.HandleFunc("/api/planning/draft", handler.SaveDraft).Methods("PUT")
	router.HandleFunc("/api/planning/draft", handler.ClearDraft).Methods("DELETE")

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
		return rr
	}

	t.Run("should answer 204 without a draft", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(http.MethodGet, "/api/planning/draft", "").Code)
	})

	t.Run("should save and load a draft", func(t *testing.T) {
		rr := serve(http.MethodPut, "/api/planning/draft", `{"name":"Poltrona","maxPrice":900}`)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = serve(http.MethodGet, "/api/planning/draft", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var draft DetailsDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
		assert.Equal(t, "Poltrona", draft.Name)
		require.NotNil(t, draft.MaxPrice)
		assert.Equal(t, 900.0, *draft.MaxPrice)
	})

	t.Run("should create a detailed record", func(t *testing.T) {
		rr := serve(http.MethodPost, "/api/planning/details",
			`{"name":"Poltrona","room":"Sala","category":"Mobília","priority":"alta","price":749.9,"quantity":2}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		var created DetailsDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "sala", created.Room)
		assert.Equal(t, "Sala", created.RoomName)
		assert.Equal(t, 2, created.Quantity)

		rr = serve(http.MethodGet, "/api/planning/details/"+created.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"priority":"alta"`)

		assert.Equal(t, http.StatusNoContent, serve(http.MethodGet, "/api/planning/draft", "").Code)
	})

	t.Run("should filter records by priority", func(t *testing.T) {
		rr := serve(http.MethodGet, "/api/planning/details?priority=baixa", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("should reject a record without priority", func(t *testing.T) {
		rr := serve(http.MethodPost, "/api/planning/details", `{"name":"Tapete","room":"sala","category":"Decoração","priority":" "}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should answer 404 for an unknown record", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/planning/details/missing", "").Code)
	})

	t.Run("should clear the draft", func(t *testing.T) {
		serve(http.MethodPut, "/api/planning/draft", `{"store":"Etna"}`)
		assert.Equal(t, http.StatusNoContent, serve(http.MethodDelete, "/api/planning/draft", "").Code)
		assert.Equal(t, http.StatusNoContent, serve(http.MethodGet, "/api/planning/draft", "").Code)
	})
}
