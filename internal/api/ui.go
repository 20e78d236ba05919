package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var staticFiles embed.FS

// RegisterUI serves the bundled single-page client at the site root.
func RegisterUI(router *chi.Mux) error {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}
	router.Handle("/*", http.FileServer(http.FS(sub)))
	return nil
}
