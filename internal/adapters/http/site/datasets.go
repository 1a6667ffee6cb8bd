// Package site serves the downloadable competition datasets.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"
)

// ErrNoDataDir is returned by Register when the dataset directory is missing.
var ErrNoDataDir = errors.New("dataset directory not found")

// Register serves files from dataDir under /data/, e.g. /data/train.csv.
func Register(_ context.Context, r chi.Router, dataDir string) error {
	if r == nil {
		panic("router is nil")
	}
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return errors.Join(ErrNoDataDir, err)
	}
	r.Handle("/data/*", http.StripPrefix("/data", Handler(os.DirFS(dataDir))))
	return nil
}

// Handler serves the regular files of fsys. Directories, including the
// root, answer 404 so the file list is never exposed.
func Handler(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(filesOnly{fsys}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == ".csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(r.URL.Path)+`"`)
		}
		files.ServeHTTP(w, r)
	})
}

type filesOnly struct {
	fs.FS
}

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
