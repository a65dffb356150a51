package navigation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/page"
)

type StateDTO struct {
	CurrentPage  string    `json:"currentPage"`
	DisplayName  string    `json:"displayName"`
	PreviousPage string    `json:"previousPage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Visits       int       `json:"visits"`
}

type Handler struct {
	navigation *Service
}

func NewHandler(navigation *Service) *Handler {
	return &Handler{navigation: navigation}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.navigation.State(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, stateToDTO(state))
}

func (h *Handler) Visit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Page string `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state, err := h.navigation.Visit(r.Context(), page.OrDefault(body.Page))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, stateToDTO(state))
}

func stateToDTO(s State) StateDTO {
	current := s.CurrentPage
	if current == "" {
		current = page.Default
	}
	return StateDTO{
		CurrentPage:  string(current),
		DisplayName:  current.DisplayName(),
		PreviousPage: string(s.PreviousPage),
		Timestamp:    s.Timestamp,
		Visits:       s.Visits,
	}
}
