package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type clientStub struct {
	docs map[string]json.RawMessage
	err  error
}

func (c *clientStub) Save(_ context.Context, collection, id string, data json.RawMessage) error {
	if c.err != nil {
		return c.err
	}
	c.docs[collection+"/"+id] = data
	return nil
}

func (c *clientStub) Get(_ context.Context, collection, id string) (json.RawMessage, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	data, ok := c.docs[collection+"/"+id]
	return data, ok, nil
}

func setup(t *testing.T, client Client) (*Database, *storage.ServiceImpl) {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
	facade := storage.NewService(storage.NewRepositoryStub(), event_bus.NewEventBus(), clock, storage.Config{})
	return NewDatabase(client, facade, clock), facade
}

func TestDatabase_FallsBackWhenUnconfigured(t *testing.T) {
	db, facade := setup(t, nil)

	saved, err := db.SaveData(ctx, "orcamentos", "42", json.RawMessage(`{"total":10}`))
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true}, saved)

	got, err := db.GetData(ctx, "orcamentos", "42")
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.False(t, got.Online)
	assert.JSONEq(t, `{"total":10,"lastUpdated":"2025-10-01T09:00:00Z","updatedBy":"moveplan"}`, string(got.Data))

	envelope, err := facade.Load(ctx, "orcamentos_42")
	require.NoError(t, err)
	assert.NotNil(t, envelope)
}

func TestDatabase_UsesWorkingClient(t *testing.T) {
	client := &clientStub{docs: map[string]json.RawMessage{}}
	db, facade := setup(t, client)

	saved, err := db.SaveData(ctx, "fotos", "1", json.RawMessage(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Online: true}, saved)
	assert.JSONEq(t, `[1,2]`, string(client.docs["fotos/1"]))

	keys, err := facade.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	missing, err := db.GetData(ctx, "fotos", "2")
	require.NoError(t, err)
	assert.Equal(t, Result{Online: true}, missing)
}

func TestDatabase_FailingClientNeverSurfaces(t *testing.T) {
	client := &clientStub{docs: map[string]json.RawMessage{}, err: errors.New("network down")}
	db, _ := setup(t, client)

	saved, err := db.SaveData(ctx, "eventos", "1", json.RawMessage(`{"title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true}, saved)

	got, err := db.GetData(ctx, "eventos", "1")
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.False(t, got.Online)
}

func TestDatabase_Rejections(t *testing.T) {
	db, _ := setup(t, nil)

	_, err := db.SaveData(ctx, "", "1", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = db.SaveData(ctx, "a", "1", json.RawMessage(`{`))
	assert.Error(t, err)

	got, err := db.GetData(ctx, "a", "missing")
	require.NoError(t, err)
	assert.Equal(t, Result{}, got)
}

func TestHandler(t *testing.T) {
	db, _ := setup(t, nil)
	handler := NewHandler(db)
	router := mux.NewRouter()
	router.HandleFunc("/api/remote/{collection}/{id}", handler.Save).Methods("PUT")
	router.HandleFunc("/api/remote/{collection}/{id}", handler.Get).Methods("GET")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/remote/configuracoes/main", strings.NewReader(`{"theme":"dark"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":null,"success":true,"online":false}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/remote/configuracoes/main", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"theme":"dark"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/remote/configuracoes/main", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
