// Package site serves the embedded operator status page. The page is
// a thin read-only client of the JSON API; all state lives in the
// engine.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded status page routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
