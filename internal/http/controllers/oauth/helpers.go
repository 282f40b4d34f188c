// Package oauth contains the controllers for the OAuth2 endpoints.
package oauth

import (
	"encoding/json"
	"net/http"

	httpx "github.com/dropDatabas3/authcore/internal/http"
)

// writeOAuthError escribe un error object estándar (RFC 6749 §5.2).
func writeOAuthError(w http.ResponseWriter, status int, errorCode, description string) {
	httpx.ObserveOAuthError(errorCode)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseForm limita el body y parsea el form de un endpoint OAuth.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return false
	}
	return true
}

// clientCredentials resuelve client_id/client_secret desde Basic auth o el form.
// Basic auth tiene precedencia (RFC 6749 §2.3.1).
func clientCredentials(r *http.Request) (string, string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	return r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
}
