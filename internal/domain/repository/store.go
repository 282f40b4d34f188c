package repository

import "context"

// CredentialStore es el contrato de persistencia que consume el core OAuth2.
//
// Garantías exigidas a los adapters:
//   - ConsumeAuthorizationCode y ConsumeRefreshToken son atómicos (read-and-delete
//     en una sola operación): bajo canje concurrente del mismo code/token,
//     exactamente un caller observa el registro y el resto recibe ErrNotFound.
//   - Un registro expirado se trata como ausente en lectura/consumo, aunque
//     todavía no haya sido borrado físicamente.
//   - Todas las operaciones respetan cancelación via ctx.
type CredentialStore interface {
	// GetClient obtiene un client por su client_id público.
	// Retorna ErrNotFound si no existe.
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// SaveClient registra un client nuevo. Retorna ErrConflict si el
	// client_id ya existe. Usado por seeding y tests; la administración de
	// clients queda fuera del core.
	SaveClient(ctx context.Context, c *Client) error

	// CreateAuthorizationCode persiste un authorization code (hasheado).
	CreateAuthorizationCode(ctx context.Context, code *AuthorizationCode) error

	// ConsumeAuthorizationCode lee y borra el code en una sola operación atómica.
	// Retorna ErrNotFound si no existe, ya fue consumido o expiró.
	ConsumeAuthorizationCode(ctx context.Context, codeHash string) (*AuthorizationCode, error)

	// CreateAccessToken persiste un access token.
	CreateAccessToken(ctx context.Context, token *AccessToken) error

	// GetAccessToken obtiene un access token por su valor.
	// Retorna ErrNotFound si no existe o expiró.
	GetAccessToken(ctx context.Context, token string) (*AccessToken, error)

	// DeleteAccessToken borra un access token. Retorna si algo fue borrado.
	DeleteAccessToken(ctx context.Context, token string) (bool, error)

	// CreateRefreshToken persiste un refresh token (hasheado).
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error

	// ConsumeRefreshToken lee y borra el token en una sola operación atómica.
	// Retorna ErrNotFound si no existe, ya fue consumido o expiró.
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// DeleteRefreshToken borra un refresh token. Retorna si algo fue borrado.
	DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error)

	// GetConsent obtiene el consent (userID, clientID). ErrNotFound si no existe.
	GetConsent(ctx context.Context, userID, clientID string) (*UserConsent, error)

	// UpsertConsent crea o actualiza el consent con el scope otorgado.
	UpsertConsent(ctx context.Context, userID, clientID, scope string) error

	// Ping verifica la conexión con el backend.
	Ping(ctx context.Context) error

	// Close libera recursos del adapter.
	Close() error
}
