package calendar

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
}

type EventDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Category     string `json:"category"`
	CategoryName string `json:"categoryName,omitempty"`
	Icon         string `json:"icon,omitempty"`
}

type CursorDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthDTO struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Label    string     `json:"label"`
	Previous CursorDTO  `json:"previous"`
	Next     CursorDTO  `json:"next"`
	Cells    []Cell     `json:"cells"`
	Events   []EventDTO `json:"events"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendar.GetEvents(r.Context(), collection.FilterFromQuery(r.URL.Query(), "category"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := h.calendar.AddEvent(r.Context(), dtoToEvent(eventDTO))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(added))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	patch, err := collection.DecodePatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	modified, err := h.calendar.ModifyEvent(r.Context(), collection.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(modified))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ok, err := h.calendar.DeleteEvent(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting upcoming events")

	limit := DefaultUpcomingLimit
	if limitString := r.URL.Query().Get("limit"); limitString != "" {
		parsed, err := strconv.Atoi(limitString)
		if err != nil || parsed < 1 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", "'limit' must be a positive number")
			return
		}
		limit = parsed
	}

	events, err := h.calendar.GetUpcomingEvents(r.Context(), limit)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
	log.Tracef("Events returned: %d", len(events))
}

// GetMonth serves the grid for ?year=&month=, defaulting to the current month.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	cursor := CursorAt(h.calendar.clock.Now())
	if yearString := r.URL.Query().Get("year"); yearString != "" {
		year, err := strconv.Atoi(yearString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number")
			return
		}
		cursor.Year = year
	}
	if monthString := r.URL.Query().Get("month"); monthString != "" {
		month, err := strconv.Atoi(monthString)
		if err != nil || month < 1 || month > 12 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be between 1 and 12")
			return
		}
		cursor.Month = time.Month(month)
	}

	view, err := h.calendar.Month(r.Context(), cursor)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, MonthDTO{
		Year:     view.Cursor.Year,
		Month:    int(view.Cursor.Month),
		Label:    view.Label,
		Previous: CursorDTO{Year: view.Previous.Year, Month: int(view.Previous.Month)},
		Next:     CursorDTO{Year: view.Next.Year, Month: int(view.Next.Month)},
		Cells:    view.Cells,
		Events:   eventsToDTO(view.Events),
	})
}

func eventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:           string(e.ID),
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date,
		Time:         e.Time,
		Category:     string(e.Category),
		CategoryName: e.Category.DisplayName(),
		Icon:         e.Category.Icon(),
	}
}

func dtoToEvent(e EventDTO) Event {
	return Event{
		ID:          collection.ID(e.ID),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Category:    Category(e.Category),
	}
}
