package planning

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
)

type ItemDTO struct {
	ID        string   `json:"id"`
	Room      string   `json:"room"`
	RoomName  string   `json:"roomName,omitempty"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Category  string   `json:"category,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

type PlanningHandler struct {
	planningService Service
}

func NewPlanningHandler(planningService Service) *PlanningHandler {
	return &PlanningHandler{planningService: planningService}
}

func (h *PlanningHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.planningService.List(r.Context(), query.Get("room"), collection.FilterFromQuery(query, "category"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	result := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		result = append(result, ItemToDTO(item))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.planningService.Add(r.Context(), DTOToItem(dto))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ItemToDTO(created))
}

func (h *PlanningHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := collection.DecodePatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.planningService.Update(r.Context(), collection.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ItemToDTO(updated))
}

func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.planningService.Remove(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlanningHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	item, err := h.planningService.Toggle(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ItemToDTO(item))
}

func (h *PlanningHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.planningService.Progress(r.Context())
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, progress)
}

// Import pulls items shared by another page; source is "shared" or "budget".
func (h *PlanningHandler) Import(w http.ResponseWriter, r *http.Request) {
	var (
		imported int
		err      error
	)
	switch source := mux.Vars(r)["source"]; source {
	case "shared":
		imported, err = h.planningService.ImportSharedItems(r.Context())
	case "budget":
		imported, err = h.planningService.ImportFromBudget(r.Context())
	default:
		rest.WriteError(w, http.StatusBadRequest, "Unknown import source", source)
		return
	}
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (h *PlanningHandler) ShareRoom(w http.ResponseWriter, r *http.Request) {
	export, err := h.planningService.ShareRoom(r.Context(), mux.Vars(r)["room"])
	if errors.Is(err, ErrUnknownRoom) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, export.Stats)
}

func (h *PlanningHandler) SharePlanning(w http.ResponseWriter, r *http.Request) {
	export, err := h.planningService.SharePlanning(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{
		"totalItems":     export.TotalItems,
		"completedItems": export.CompletedItems,
	})
}

func ItemToDTO(item Item) ItemDTO {
	dto := ItemDTO{
		ID:        string(item.ID),
		Room:      item.Room,
		RoomName:  RoomName(item.Room),
		Text:      item.Text,
		Completed: item.Completed,
		Category:  item.Category,
	}
	if item.Price != nil {
		f := item.Price.InexactFloat64()
		dto.Price = &f
	}
	return dto
}

func DTOToItem(dto ItemDTO) Item {
	item := Item{
		ID:        collection.ID(dto.ID),
		Room:      dto.Room,
		Text:      dto.Text,
		Completed: dto.Completed,
		Category:  dto.Category,
	}
	if dto.Price != nil {
		price := decimal.NewFromFloat(*dto.Price)
		item.Price = &price
	}
	return item
}
