package api

import (
	"net/http"
	"os"
	"strings"
)

// spaFileSystem implements http.FileSystem and handles client-side routing
// by falling back to index.html for non-existent files.
type spaFileSystem struct {
	root http.FileSystem
}

// Open opens the named file. If the file does not exist, it falls back to
// index.html so deep links into the dashboard resolve. Paths under /api/
// never fall back: a missing endpoint is a 404, not the dashboard.
func (s *spaFileSystem) Open(name string) (http.File, error) {
	f, err := s.root.Open(name)
	if os.IsNotExist(err) && !strings.HasPrefix(name, "/api/") {
		return s.root.Open("index.html")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
