package asset

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSWriter stores uploaded files under AssetsDir; the server exposes that
// directory at /assets/.
type FSWriter struct {
	AssetsDir     string
	PublicBaseURL string
}

func NewFSWriter(assetsDir string, publicBaseURL string) *FSWriter {
	return &FSWriter{AssetsDir: assetsDir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (w *FSWriter) WriteFile(dir, filename string, data []byte) (string, error) {
	rel := path.Clean("/" + strings.ReplaceAll(dir, "\\", "/"))
	name := filepath.Base(filename)
	if rel == "/" || name == "." || name == "/" || strings.HasPrefix(name, "..") {
		return "", errors.New("invalid asset path")
	}
	full := filepath.Join(w.AssetsDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(full, name), data, 0o644); err != nil {
		return "", err
	}
	return w.buildURL("/assets" + rel + "/" + name), nil
}

func (w *FSWriter) buildURL(p string) string {
	if w.PublicBaseURL == "" {
		return p
	}
	return w.PublicBaseURL + p
}
