package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moveplan/moveplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UpdateRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type SettingsHandler struct {
	settingsService Service
}

func NewSettingsHandler(settingsService Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.settingsService.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, doc)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := h.settingsService.Update(r.Context(), req.Path, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, doc)
}

func (h *SettingsHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	value, err := h.settingsService.Value(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]any{"path": path, "value": value})
}

func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	doc, err := h.settingsService.Reset(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, doc)
}

func (h *SettingsHandler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	removed, err := h.settingsService.ClearAllData(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidPath):
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings path", err.Error())
	case errors.Is(err, ErrUnknownSetting):
		rest.WriteError(w, http.StatusNotFound, "Unknown setting", err.Error())
	default:
		log.Errorf("settings request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
