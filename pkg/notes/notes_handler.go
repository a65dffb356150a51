package notes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	log "github.com/sirupsen/logrus"
)

type NoteDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	CategoryName string   `json:"categoryName,omitempty"`
	Priority     string   `json:"priority"`
	Tags         []string `json:"tags"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

type NotesHandler struct {
	notesService Service
}

func NewNotesHandler(notesService Service) *NotesHandler {
	return &NotesHandler{notesService: notesService}
}

func (h *NotesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notesService.List(r.Context(), collection.FilterFromQuery(r.URL.Query(), "category"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	result := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		result = append(result, NoteToDTO(n))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.notesService.Add(r.Context(), DTOToNote(dto))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	log.Debugf("note %s created", created.ID)
	rest.WriteJSON(w, http.StatusCreated, NoteToDTO(created))
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notesService.Get(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, NoteToDTO(note))
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := collection.DecodePatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// tags may be sent as the comma separated text typed in the form
	if raw, ok := patch["tags"].(string); ok {
		patch["tags"] = SplitTags(raw)
	}
	updated, err := h.notesService.Update(r.Context(), collection.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, NoteToDTO(updated))
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.notesService.Remove(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Note not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotesHandler) GetHTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.notesService.RenderHTML(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *NotesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.notesService.Stats(r.Context())
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, stats)
}

func (h *NotesHandler) Share(w http.ResponseWriter, r *http.Request) {
	shared, err := h.notesService.Share(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"shared": shared})
}

func NoteToDTO(n Note) NoteDTO {
	dto := NoteDTO{
		ID:           string(n.ID),
		Title:        n.Title,
		Content:      n.Content,
		Category:     string(n.Category),
		CategoryName: n.Category.DisplayName(),
		Priority:     string(n.Priority),
		Tags:         n.Tags,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if !n.CreatedAt.IsZero() {
		dto.CreatedAt = n.CreatedAt.Format(rest.TimeFormat)
	}
	if n.UpdatedAt != nil {
		dto.UpdatedAt = n.UpdatedAt.Format(rest.TimeFormat)
	}
	return dto
}

func DTOToNote(dto NoteDTO) Note {
	return Note{
		ID:       collection.ID(dto.ID),
		Title:    dto.Title,
		Content:  dto.Content,
		Category: Category(dto.Category),
		Priority: Priority(dto.Priority),
		Tags:     dto.Tags,
	}
}
