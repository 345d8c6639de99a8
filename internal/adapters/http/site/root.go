// Package site serves the embedded upload page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// ErrServe is reported when the embedded page cannot be served.
var ErrServe = errors.New("upload page serve failed")

// Register attaches the upload page to mux at "/".
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// HandleRoot serves index.html for GET / and its static assets; every other path is 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/", "/index.html", "/style.css":
		h.files.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}
