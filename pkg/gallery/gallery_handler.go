package gallery

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	log "github.com/sirupsen/logrus"
)

type PhotoDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Src         string `json:"src"`
	Alt         string `json:"alt"`
}

type Handler struct {
	gallery *Service
}

func NewHandler(gallery *Service) *Handler {
	return &Handler{gallery: gallery}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	photos, err := h.gallery.List(r.Context(), collection.FilterFromQuery(r.URL.Query(), "category"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	dtos := make([]PhotoDTO, 0, len(photos))
	for _, p := range photos {
		dtos = append(dtos, photoToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Upload accepts a multipart form with the image under "photo" and its
// metadata in the title, description, category and alt fields.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Missing photo", "the image must be sent in the 'photo' field")
		return
	}
	defer file.Close()
	log.Debugf("uploading photo %s (%d bytes)", header.Filename, header.Size)

	photo, err := h.gallery.Upload(r.Context(), Photo{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    Category(r.FormValue("category")),
		Alt:         r.FormValue("alt"),
	}, file)
	switch {
	case errors.Is(err, ErrTooLarge):
		rest.WriteError(w, http.StatusRequestEntityTooLarge, "Photo too large", err.Error())
	case errors.Is(err, ErrNotAnImage):
		rest.WriteError(w, http.StatusUnsupportedMediaType, "Not an image", err.Error())
	case err != nil:
		collection.WriteError(w, err)
	default:
		rest.WriteJSON(w, http.StatusCreated, photoToDTO(photo))
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := collection.DecodePatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	photo, err := h.gallery.Update(r.Context(), collection.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, photoToDTO(photo))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.gallery.Remove(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func photoToDTO(p Photo) PhotoDTO {
	return PhotoDTO{
		ID:          string(p.ID),
		Title:       p.Title,
		Description: p.Description,
		Category:    string(p.Category),
		Src:         p.Src,
		Alt:         p.Alt,
	}
}
