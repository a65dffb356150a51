package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
)

type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Handler struct {
	notifier *Notifier
}

func NewHandler(notifier *Notifier) *Handler {
	return &Handler{notifier: notifier}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	live := h.notifier.Live()
	dtos := make([]NotificationDTO, 0, len(live))
	for _, n := range live {
		dtos = append(dtos, ToDTO(n))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.notifier.Dismiss(id)
	w.WriteHeader(http.StatusNoContent)
}

func ToDTO(n Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}
