// Package site handles the embedded landing page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded landing page routes to mux. The file
// server is mounted at root, so it only answers paths no other route
// claimed.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests and serves the embedded landing page
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	files := http.FileServer(FS())
	files.ServeHTTP(w, r)
}
