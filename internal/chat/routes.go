package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ragchat/internal/retrieval"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type questionRequest struct {
	Question string `json:"question"`
}

// RegisterRoutes mounts the conversational API routes.
func RegisterRoutes(r chi.Router, responder *Responder) {
	r.Route("/rag", func(r chi.Router) {
		r.Post("/sessions/create", handleCreateSession(responder.Store))
		r.Get("/sessions/{sessionID}/messages", handleSessionMessages(responder.Store))
		r.Post("/document_chat", handleDocumentChat(responder))
		r.Post("/wikipedia_chat", handleWikipediaChat(responder))
		r.Post("/qa_rag", handleQuestion(responder))
	})
}

func handleCreateSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := NewSessionID()
		store.Create(id)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"session_id": id})
	}
}

func handleSessionMessages(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if !store.Exists(id) {
			http.Error(w, `{"error":"session `+id+` not found"}`, http.StatusNotFound)
			return
		}

		messages := store.Messages(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"session_id":    id,
			"messages":      messages,
			"message_count": len(messages) / 2,
		})
	}
}

func handleDocumentChat(responder *Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeChatRequest(w, r)
		if !ok {
			return
		}

		result, err := responder.DocumentChat(r.Context(), req.SessionID, req.Question)
		if err != nil {
			writeChatError(w, err)
			return
		}

		resp := map[string]any{
			"answer":        result.Answer,
			"citation_info": result.Citations,
		}
		if result.NewSessionID != "" {
			resp["new_session_id"] = result.NewSessionID
			resp["message"] = result.Notice
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleWikipediaChat(responder *Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeChatRequest(w, r)
		if !ok {
			return
		}

		result, err := responder.WikipediaChat(r.Context(), req.SessionID, req.Question)
		if err != nil {
			writeChatError(w, err)
			return
		}

		resp := map[string]any{
			"answer":         result.Answer,
			"wiki_citations": result.Citations,
		}
		if result.NewSessionID != "" {
			resp["new_session_id"] = result.NewSessionID
			resp["message"] = result.Notice
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleQuestion(responder *Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
			return
		}

		result, err := responder.Answer(r.Context(), req.Question)
		if err != nil {
			writeChatError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"answer":        result.Answer,
			"citation_info": result.Citations,
		})
	}
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return req, false
	}
	if req.SessionID == "" {
		http.Error(w, `{"error":"session_id is required"}`, http.StatusBadRequest)
		return req, false
	}
	if req.Question == "" {
		http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeChatError(w http.ResponseWriter, err error) {
	var external *ExternalError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
	case errors.Is(err, retrieval.ErrNoIndex):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
	case errors.As(err, &external):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
	default:
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
	}
}
