// internal/api/http/assets.go
package http

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pathwise/pathwise/internal/storage"
)

// MountAssets wires lesson/video asset upload and retrieval under the
// given router. Uploads are admin-only; mounting decides that.
func MountAssets(r chi.Router, as storage.AssetStore) {
	// POST /assets/{subject}/{subtopic}
	r.Post("/{subject}/{subtopic}", func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		subtopic := chi.URLParam(r, "subtopic")
		f, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file required")
			return
		}
		defer f.Close()

		name := filepath.Base(header.Filename)
		key := subject + "/" + subtopic + "/" + name
		canonical, err := as.Put(key, f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store error: "+err.Error())
			return
		}
		resp := map[string]string{"key": canonical}
		if u, err := as.URL(canonical); err == nil {
			resp["url"] = u
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	// GET /assets/*  -> returns the asset at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		key = strings.TrimPrefix(key, "/")
		rc, err := as.Get(key)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		defer rc.Close()

		ctype := mime.TypeByExtension(filepath.Ext(key))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ctype)
		_, _ = io.Copy(w, rc)
	})
}
