package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// resetTokenTTL bounds how long a password-reset token stays usable.
const resetTokenTTL = 10 * time.Minute

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordUpdateRequest struct {
	Identifier  string `json:"identifier"`
	NewPassword string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type deleteUserRequest struct {
	Identifier string `json:"identifier"`
}

// RegisterRoutes mounts the account and token API routes.
func RegisterRoutes(r chi.Router, store *Store, tokens *TokenManager) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/create_user", handleCreateUser(store))
		r.Post("/login_user", handleLogin(store))
		r.Post("/oauth_token", handleToken(store, tokens))
		r.Put("/password_modification", handleUpdatePassword(store))
		r.Post("/forgot-password", handleForgotPassword(store, tokens))
		r.Post("/reset-password", handleResetPassword(store, tokens))

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(tokens, store))
			r.Get("/me", handleMe())
			r.Delete("/delete_user", handleDeleteUser(store))
		})
	})
}

func handleCreateUser(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, `{"error":"username, email and password are required"}`, http.StatusBadRequest)
			return
		}

		if _, err := store.Create(r.Context(), req.Username, req.Email, req.Password); err != nil {
			if errors.Is(err, ErrUserExists) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"response": "User created successfully"})
	}
}

func handleLogin(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if _, err := store.Authenticate(r.Context(), req.Username, req.Password); err != nil {
			http.Error(w, `{"error":"`+ErrBadCredentials.Error()+`"}`, http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "Login successful"})
	}
}

// handleToken accepts OAuth2-style form credentials and returns a
// bearer token.
func handleToken(store *Store, tokens *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, `{"error":"invalid form body"}`, http.StatusBadRequest)
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		user, err := store.Authenticate(r.Context(), username, password)
		if err != nil {
			http.Error(w, `{"error":"`+ErrBadCredentials.Error()+`"}`, http.StatusUnauthorized)
			return
		}

		token, err := tokens.Generate(user.Username)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"could not validate credentials"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	}
}

func handleUpdatePassword(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Identifier == "" || req.NewPassword == "" {
			http.Error(w, `{"error":"identifier and new_password are required"}`, http.StatusBadRequest)
			return
		}

		if err := store.UpdatePassword(r.Context(), req.Identifier, req.NewPassword); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "Password updated successfully"})
	}
}

func handleForgotPassword(store *Store, tokens *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		user, err := store.ByIdentifier(r.Context(), req.Email)
		if err != nil {
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
			return
		}

		token, err := tokens.GenerateWithTTL(user.Email, resetTokenTTL)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"response":    "Password reset token generated.",
			"reset_token": token,
		})
	}
}

func handleResetPassword(store *Store, tokens *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		email, err := tokens.Verify(req.Token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusBadRequest)
			return
		}

		if err := store.UpdatePassword(r.Context(), email, req.NewPassword); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "Password reset successful"})
	}
}

func handleDeleteUser(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := store.Delete(r.Context(), req.Identifier); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "User deleted successfully"})
	}
}
