package remote

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
)

type Handler struct {
	db *Database
}

func NewHandler(db *Database) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.db.SaveData(r.Context(), vars["collection"], vars["id"], body)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := h.db.GetData(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidKey) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid document key", err.Error())
		return
	}
	rest.WriteError(w, http.StatusBadRequest, "Invalid document", err.Error())
}
