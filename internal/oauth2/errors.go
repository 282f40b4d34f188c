package oauth2

import "errors"

// Service errors. Cada uno se mapea 1:1 a un error identifier estándar de
// OAuth 2.0 (RFC 6749 §5.2 / §4.1.2.1) en la capa de transporte.
var (
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrAccessDenied            = errors.New("access_denied")
	ErrServerError             = errors.New("server_error")
)

// ErrorCode devuelve el identifier OAuth para un error del core.
// Errores desconocidos (fallas de store no mapeadas) colapsan a server_error
// para no filtrar detalle interno al caller.
func ErrorCode(err error) string {
	for _, e := range []error{
		ErrInvalidRequest,
		ErrInvalidClient,
		ErrInvalidGrant,
		ErrUnauthorizedClient,
		ErrUnsupportedGrantType,
		ErrUnsupportedResponseType,
		ErrInvalidScope,
		ErrAccessDenied,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return ErrServerError.Error()
}
