package backup

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/moveplan/moveplan/internal/rest"
)

// MaxBackupSize bounds an uploaded backup; photos are inlined so files get large.
const MaxBackupSize = 64 << 20

type Handler struct {
	backup *Service
}

func NewHandler(backup *Service) *Handler {
	return &Handler{backup: backup}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.backup.Export(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	filename := "moveplan-backup-" + doc.ExportDate.Format("2006-01-02") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	rest.WriteJSON(w, http.StatusOK, doc)
}

// Import takes the backup either as the raw JSON body or as the "file" field
// of a multipart form.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBackupSize)

	var body io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Missing backup file", "the backup must be sent in the 'file' field")
			return
		}
		defer file.Close()
		body = file
	}

	restored, err := h.backup.Import(r.Context(), body)
	switch {
	case errors.Is(err, ErrMalformedBackup):
		rest.WriteError(w, http.StatusBadRequest, "Malformed backup", err.Error())
	case errors.Is(err, ErrUnrecognizedBackup):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Unrecognized backup", err.Error())
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		rest.WriteJSON(w, http.StatusOK, map[string][]string{"restored": restored})
	}
}
