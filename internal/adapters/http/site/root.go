// Package site serves the API banner and the embedded single-page frontend.
package site

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Banner is the body of GET /.
const Banner = "Podcast Clip Platform API"

const indexFile = "index.html"

// Register attaches the banner and the frontend routes to mux. It claims the
// catch-all pattern, so it must be the last registration on mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewRootHandler(FS())
	mux.HandleFunc("GET /{$}", h.HandleBanner)
	mux.HandleFunc("/", h.HandleFrontend)
}

// RootHandler serves the banner and static frontend files.
type RootHandler struct {
	files fs.FS
}

// NewRootHandler creates a root handler over files.
func NewRootHandler(files fs.FS) *RootHandler {
	return &RootHandler{files: files}
}

// HandleBanner handles GET / requests.
func (h *RootHandler) HandleBanner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": Banner})
}

// HandleFrontend serves an embedded file when one matches the path and
// index.html otherwise. Unmatched /api/ paths are 404.
func (h *RootHandler) HandleFrontend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":"Not Found"}` + "\n"))
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	name = strings.TrimPrefix(name, "static/")
	if name != "" && name != indexFile {
		if st, err := fs.Stat(h.files, name); err == nil && !st.IsDir() {
			http.ServeFileFS(w, r, h.files, name)
			return
		}
	}
	h.serveIndex(w, r)
}

// serveIndex writes index.html directly; http.FileServer would redirect
// /index.html to /.
func (h *RootHandler) serveIndex(w http.ResponseWriter, _ *http.Request) {
	body, err := fs.ReadFile(h.files, indexFile)
	if err != nil {
		http.Error(w, "frontend not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}
