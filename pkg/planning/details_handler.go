package planning

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
)

type DetailsDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Room      string    `json:"room"`
	RoomName  string    `json:"roomName,omitempty"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Price     *float64  `json:"price,omitempty"`
	MaxPrice  *float64  `json:"maxPrice,omitempty"`
	Store     string    `json:"store,omitempty"`
	Payment   string    `json:"payment,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
	Specs     string    `json:"specs,omitempty"`
	Deadline  string    `json:"deadline,omitempty"`
	Delivery  string    `json:"delivery,omitempty"`
	Status    string    `json:"status"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
	Links     string    `json:"links,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *PlanningHandler) CreateDetails(w http.ResponseWriter, r *http.Request) {
	var dto DetailsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	saved, err := h.planningService.SaveDetails(r.Context(), DTOToDetails(dto))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, DetailsToDTO(saved))
}

func (h *PlanningHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.planningService.GetDetails(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DetailsToDTO(details))
}

func (h *PlanningHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	records, err := h.planningService.ListDetails(r.Context(), query.Get("room"), collection.FilterFromQuery(query, "priority"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	result := make([]DetailsDTO, 0, len(records))
	for _, d := range records {
		result = append(result, DetailsToDTO(d))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *PlanningHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.planningService.LoadDraft(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if draft == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DetailsToDTO(*draft))
}

// SaveDraft answers 204 when the form was blank and nothing was kept.
func (h *PlanningHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var dto DetailsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	saved, err := h.planningService.SaveDraft(r.Context(), DTOToDetails(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !saved {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *PlanningHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.planningService.ClearDraft(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func DetailsToDTO(d Details) DetailsDTO {
	return DetailsDTO{
		ID:        string(d.ID),
		Name:      d.Name,
		Room:      d.Room,
		RoomName:  RoomName(d.Room),
		Category:  d.Category,
		Priority:  d.Priority,
		Price:     toFloat(d.Price),
		MaxPrice:  toFloat(d.MaxPrice),
		Store:     d.Store,
		Payment:   d.Payment,
		Brand:     d.Brand,
		Model:     d.Model,
		Color:     d.Color,
		Size:      d.Size,
		Specs:     d.Specs,
		Deadline:  d.Deadline,
		Delivery:  d.Delivery,
		Status:    d.Status,
		Quantity:  d.Quantity,
		Notes:     d.Notes,
		Links:     d.Links,
		Timestamp: d.Timestamp,
	}
}

func DTOToDetails(dto DetailsDTO) Details {
	return Details{
		ID:       collection.ID(dto.ID),
		Name:     dto.Name,
		Room:     dto.Room,
		Category: dto.Category,
		Priority: dto.Priority,
		Price:    toDecimal(dto.Price),
		MaxPrice: toDecimal(dto.MaxPrice),
		Store:    dto.Store,
		Payment:  dto.Payment,
		Brand:    dto.Brand,
		Model:    dto.Model,
		Color:    dto.Color,
		Size:     dto.Size,
		Specs:    dto.Specs,
		Deadline: dto.Deadline,
		Delivery: dto.Delivery,
		Status:   dto.Status,
		Quantity: dto.Quantity,
		Notes:    dto.Notes,
		Links:    dto.Links,
	}
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
