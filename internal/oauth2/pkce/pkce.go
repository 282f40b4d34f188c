// Package pkce validates PKCE code verifiers (RFC 7636).
package pkce

import (
	"crypto/sha256"
	"encoding/base64"

	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// Supported code_challenge_method values.
const (
	MethodS256  = "S256"
	MethodPlain = "plain"
)

// KnownMethod reports whether method is one of the supported challenge methods.
func KnownMethod(method string) bool {
	return method == MethodS256 || method == MethodPlain
}

// Verify checks a code_verifier against the stored challenge.
//
//   - S256: base64url(sha256(verifier)) must equal challenge.
//   - plain: verifier must equal challenge.
//   - any other method: false.
//
// Comparisons are constant-time so a mismatch position cannot be probed
// through timing.
func Verify(verifier, challenge, method string) bool {
	switch method {
	case MethodS256:
		sum := sha256.Sum256([]byte(verifier))
		derived := base64.RawURLEncoding.EncodeToString(sum[:])
		return tokens.ConstantTimeEquals(derived, challenge)
	case MethodPlain:
		return tokens.ConstantTimeEquals(verifier, challenge)
	default:
		return false
	}
}
