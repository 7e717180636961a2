package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	indexPage    = "index.html"
	altIndexPage = "index.htm"
)

// Static serves files below a root directory.
//
// Directories are served through their index.html or index.htm when
// present and as a generated listing otherwise. A direct request for an
// index.html file is answered with the file itself rather than a redirect
// to its directory. A file requested with a trailing slash is not found.
type Static struct {
	root  http.Dir
	files http.Handler
}

// NewStatic creates a static handler for root. The directory is resolved
// per request, so root does not need to exist yet.
func NewStatic(root string) *Static {
	dir := http.Dir(root)
	return &Static{
		root:  dir,
		files: http.FileServer(dir),
	}
}

// ServeHTTP implements http.Handler.
func (h *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	name := path.Clean(upath)

	switch {
	case strings.HasSuffix(upath, "/"+indexPage):
		h.serveFile(w, r, name)
	case strings.HasSuffix(upath, "/"):
		h.serveDir(w, r, name)
	default:
		h.files.ServeHTTP(w, r)
	}
}

// serveDir handles paths with a trailing slash.
func (h *Static) serveDir(w http.ResponseWriter, r *http.Request, name string) {
	info, err := h.stat(name)
	if err != nil {
		writeFSError(w, err)
		return
	}
	if !info.IsDir() {
		writeFSError(w, fs.ErrNotExist)
		return
	}

	// net/http already looks for index.html and falls back to a listing.
	if !h.isFile(path.Join(name, indexPage)) && h.isFile(path.Join(name, altIndexPage)) {
		h.serveFile(w, r, path.Join(name, altIndexPage))
		return
	}
	h.files.ServeHTTP(w, r)
}

// serveFile writes the named file with 200. A directory is redirected to
// its own URL with a trailing slash.
func (h *Static) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := h.root.Open(name)
	if err != nil {
		writeFSError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeFSError(w, err)
		return
	}
	if info.IsDir() {
		target := r.URL.Path + "/"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Static) stat(name string) (fs.FileInfo, error) {
	f, err := h.root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}

func (h *Static) isFile(name string) bool {
	info, err := h.stat(name)
	return err == nil && !info.IsDir()
}

func writeFSError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
