package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ragchat/internal/auth"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 64 << 20

// RegisterRoutes mounts the file API routes. All of them require an
// authenticated user.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/files", func(r chi.Router) {
		r.Post("/upload", handleUpload(store))
		r.Get("/list", handleList(store))
		r.Delete("/{fileID}", handleDelete(store))
	})
}

func handleUpload(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, `{"error":"invalid multipart body"}`, http.StatusBadRequest)
			return
		}

		parts := r.MultipartForm.File["files"]
		if len(parts) == 0 {
			http.Error(w, `{"error":"no files provided"}`, http.StatusBadRequest)
			return
		}

		uploaded := make([]*File, 0, len(parts))
		for _, part := range parts {
			src, err := part.Open()
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
			file, err := store.Save(r.Context(), user.ID, part.Filename, src)
			src.Close()
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
			uploaded = append(uploaded, file)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": fmt.Sprintf("Successfully uploaded %d files", len(uploaded)),
			"files":   uploaded,
		})
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		list, err := store.List(r.Context(), user.ID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []File{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"files": list})
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		err := store.Delete(r.Context(), user.ID, chi.URLParam(r, "fileID"))
		if err != nil {
			if errors.Is(err, ErrFileNotFound) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "File deleted successfully"})
	}
}
