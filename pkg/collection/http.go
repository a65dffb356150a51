package collection

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/moveplan/moveplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

// DecodePatch reads a JSON object of top-level fields to change.
func DecodePatch(r *http.Request) (map[string]any, error) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, errors.New("patch must be a JSON object")
	}
	return patch, nil
}

// FilterFromQuery builds a Filter from ?<field>=value&q=text.
func FilterFromQuery(query url.Values, field string) Filter {
	return Filter{
		Field: field,
		Value: query.Get(field),
		Query: query.Get("q"),
	}
}

// WriteError maps manager errors onto HTTP statuses.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidPatch), errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalid):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Errorf("request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
