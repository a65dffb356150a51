package storage

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type EnvelopeDTO struct {
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	SourcePage string          `json:"sourcePage"`
	Version    string          `json:"version"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	Target     string          `json:"target,omitempty"`
	Shared     bool            `json:"shared,omitempty"`
	Imported   bool            `json:"imported,omitempty"`
}

type Handler struct {
	storage Service
}

func NewHandler(storage Service) *Handler {
	return &Handler{storage: storage}
}

func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.storage.ListKeys(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, keys)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	envelope, err := h.storage.Load(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if envelope == nil {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, envelopeToDTO(key, *envelope))
}

// Put stores the request body as the payload of key. An optional expiresAt
// query parameter (RFC3339) sets the expiry.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	log.Debugf("Saving entry %s", key)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid payload", "request body must be a JSON document")
		return
	}

	var opts []SaveOption
	if expires := r.URL.Query().Get("expiresAt"); expires != "" {
		at, err := time.Parse(time.RFC3339, expires)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid expiresAt format", "'expiresAt' must be in RFC3339 format")
			return
		}
		opts = append(opts, WithExpiry(at))
	}

	envelope, err := h.storage.Save(r.Context(), key, json.RawMessage(body), opts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, envelopeToDTO(key, envelope))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := h.storage.Remove(r.Context(), key); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.storage.Cleanup(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func envelopeToDTO(key string, e Envelope) EnvelopeDTO {
	return EnvelopeDTO{
		Key:        key,
		Payload:    e.Payload,
		Timestamp:  e.Timestamp,
		SourcePage: e.SourcePage,
		Version:    e.Version,
		ExpiresAt:  e.ExpiresAt,
		Target:     e.Target,
		Shared:     e.Shared,
		Imported:   e.Imported,
	}
}
