package sharing

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/notification"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	sharing Service
}

func NewHandler(sharing Service) *Handler {
	return &Handler{sharing: sharing}
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	log.Debugf("Sharing %s", key)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid payload", "request body must be a JSON document")
		return
	}
	if err := h.sharing.ShareData(r.Context(), key, json.RawMessage(body)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	data, err := h.sharing.GetSharedData(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.Error(w, "nothing shared under "+key, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sharing.ClearSharedData(r.Context(), mux.Vars(r)["key"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	n, err := h.sharing.CheckForSharedData(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, notification.ToDTO(*n))
}
