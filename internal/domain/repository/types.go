package repository

import "time"

const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Client representa un cliente OAuth registrado.
type Client struct {
	ID           string // UUID interno
	ClientID     string // identificador público
	Name         string
	Type         string // "public" | "confidential"
	SecretHash   string // bcrypt del secret; vacío para clients públicos
	RedirectURIs []string
	GrantTypes   []string // grants habilitados para este client
	Scope        string   // scope permitido (space-delimited); default si el request no pide
}

// AuthorizationCode es un authorization code pendiente de canje.
// Solo se persiste el hash del code; el plaintext viaja una única vez
// en el redirect hacia el cliente.
type AuthorizationCode struct {
	CodeHash        string
	ClientID        string
	UserID          string
	RedirectURI     string
	Scope           string
	CodeChallenge   string
	ChallengeMethod string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// AccessToken es un bearer token opaco emitido por el token endpoint.
type AccessToken struct {
	Token     string
	ClientID  string
	UserID    string // client_id para client_credentials
	Scope     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RefreshToken es un token de refresh de un solo uso.
// Se persiste únicamente su hash.
type RefreshToken struct {
	TokenHash   string
	AccessToken string // access token emparejado en la emisión
	ClientID    string
	UserID      string
	Scope       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// UserConsent registra la aprobación de un usuario para un client.
// Clave compuesta (UserID, ClientID).
type UserConsent struct {
	UserID    string
	ClientID  string
	Scope     string // scopes otorgados (space-delimited)
	GrantedAt time.Time
}

// Expired reporta si el code ya superó su expiración.
func (c *AuthorizationCode) Expired(now time.Time) bool { return now.After(c.ExpiresAt) }

// Expired reporta si el token ya superó su expiración.
func (t *AccessToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// Expired reporta si el token ya superó su expiración.
func (t *RefreshToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }
