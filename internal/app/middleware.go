package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/pkg/page"
	log "github.com/sirupsen/logrus"
)

const PageHeader = "X-Page"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(logRequests)
	r.Use(propagatePage)
}

// propagatePage puts the page named by the X-Page header into the request
// context, where the storage facade picks it up as the source page.
func propagatePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if name := req.Header.Get(PageHeader); name != "" {
			p := page.OrDefault(name)
			log.Debugf("request from page %s", p)
			ctx = page.WithPage(ctx, p)
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}
