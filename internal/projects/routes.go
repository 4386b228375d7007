package projects

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ragchat/internal/auth"
)

type createRequest struct {
	ProjectName string   `json:"project_name"`
	FileIDs     []string `json:"file_ids"`
}

type projectView struct {
	ProjectID string   `json:"project_id"`
	Name      string   `json:"project_name"`
	SessionID string   `json:"session_id"`
	FileNames []string `json:"file_names"`
	IsActive  bool     `json:"is_active"`
	Status    Status   `json:"initialization_status"`
	CreatedAt string   `json:"created_at"`
}

func viewOf(p *Project, fileNames []string) projectView {
	if fileNames == nil {
		fileNames = []string{}
	}
	return projectView{
		ProjectID: p.ID,
		Name:      p.Name,
		SessionID: p.SessionID,
		FileNames: fileNames,
		IsActive:  p.IsActive,
		Status:    p.Status,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// RegisterRoutes mounts the project API routes. All of them require
// an authenticated user.
func RegisterRoutes(r chi.Router, service *Service) {
	r.Route("/projects", func(r chi.Router) {
		r.Post("/create", handleCreate(service))
		r.Post("/start/{projectID}", handleStart(service))
		r.Get("/list", handleList(service))
		r.Get("/specific/{projectID}", handleGet(service))
		r.Delete("/{projectID}", handleDelete(service))
	})
}

func handleCreate(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ProjectName == "" || len(req.FileIDs) == 0 {
			http.Error(w, `{"error":"project_name and file_ids are required"}`, http.StatusBadRequest)
			return
		}

		project, err := service.Create(r.Context(), user.ID, req.ProjectName, req.FileIDs)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"project_id": project.ID,
			"session_id": project.SessionID,
			"message":    "Project created successfully with initialized embeddings.",
		})
	}
}

func handleStart(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		project, err := service.Start(r.Context(), user.ID, chi.URLParam(r, "projectID"))
		if err != nil {
			writeProjectError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"project_id": project.ID,
			"session_id": project.SessionID,
			"message":    "Project started successfully. Ready for chat.",
		})
	}
}

func handleList(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}
		activeOnly := r.URL.Query().Get("active_only") == "true"

		list, names, err := service.List(r.Context(), user.ID, activeOnly)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		views := make([]projectView, len(list))
		for i, p := range list {
			views[i] = viewOf(p, names[i])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"projects": views,
			"count":    len(views),
		})
	}
}

func handleGet(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		project, names, err := service.Get(r.Context(), user.ID, chi.URLParam(r, "projectID"))
		if err != nil {
			writeProjectError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(viewOf(project, names))
	}
}

func handleDelete(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}

		if err := service.Delete(r.Context(), user.ID, chi.URLParam(r, "projectID")); err != nil {
			writeProjectError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Project and associated session deleted successfully",
		})
	}
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
	case errors.Is(err, ErrFilesUnavailable), errors.Is(err, ErrSessionExpired):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	default:
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
	}
}
