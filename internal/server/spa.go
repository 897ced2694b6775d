package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// spaHandler serves files from dir and falls back to index.html so client
// side routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	root := os.DirFS(dir)
	files := http.FileServerFS(root)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name != "" {
			info, err := fs.Stat(root, name)
			if err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		if _, err := fs.Stat(root, "index.html"); err != nil {
			writeDetail(w, http.StatusNotFound, "Not found")
			return
		}
		http.ServeFileFS(w, r, root, "index.html")
	}
}
