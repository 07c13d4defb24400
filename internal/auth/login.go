package auth

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/couponTracker/coupon-ocr-service/internal/config"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginHandler exchanges an API client credential pair for a JWT.
// Clients and their bcrypt secret hashes come from configuration.
func LoginHandler(clients []config.APIClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if req.ClientID == "" || req.Secret == "" {
			http.Error(w, `{"error":"client_id and secret are required"}`, http.StatusBadRequest)
			return
		}

		var client *config.APIClient
		for i := range clients {
			if clients[i].ID == req.ClientID {
				client = &clients[i]
				break
			}
		}
		if client == nil {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Secret)); err != nil {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}

		token, err := GenerateToken(client.ID, client.Name, client.Role)
		if err != nil {
			http.Error(w, `{"error":"failed to generate token"}`, http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(LoginResponse{
			Token:    token,
			ClientID: client.ID,
			Name:     client.Name,
			Role:     client.Role,
		})
	}
}
