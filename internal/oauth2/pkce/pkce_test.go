package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func TestKnownMethod(t *testing.T) {
	if !KnownMethod(MethodS256) || !KnownMethod(MethodPlain) {
		t.Fatal("S256 y plain deben ser métodos conocidos")
	}
	for _, m := range []string{"", "s256", "PLAIN", "SHA256", "md5"} {
		if KnownMethod(m) {
			t.Fatalf("método %q no debería ser conocido", m)
		}
	}
}

func TestVerify_S256(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := challengeS256(verifier)

	if !Verify(verifier, challenge, MethodS256) {
		t.Fatal("verifier correcto rechazado")
	}
	if Verify(verifier+"x", challenge, MethodS256) {
		t.Fatal("verifier alterado aceptado")
	}
	if Verify("", challenge, MethodS256) {
		t.Fatal("verifier vacío aceptado")
	}
}

// Cualquier verifier que difiera en un solo bit debe fallar.
func TestVerify_S256_BitFlip(t *testing.T) {
	verifier := "3641a2c2c5a64f5badf00dfeedfacecafebabe01"
	challenge := challengeS256(verifier)

	raw := []byte(verifier)
	for i := 0; i < len(raw); i++ {
		for bit := uint(0); bit < 8; bit++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 1 << bit
			if string(mutated) == verifier {
				continue
			}
			if Verify(string(mutated), challenge, MethodS256) {
				t.Fatalf("bit flip en byte %d bit %d aceptado", i, bit)
			}
		}
	}
}

func TestVerify_Plain(t *testing.T) {
	if !Verify("abc123", "abc123", MethodPlain) {
		t.Fatal("plain igual rechazado")
	}
	if Verify("abc123", "abc124", MethodPlain) {
		t.Fatal("plain distinto aceptado")
	}
}

func TestVerify_UnknownMethod(t *testing.T) {
	// Aunque el verifier coincida bajo S256 o plain, un método desconocido
	// nunca valida.
	verifier := "some-verifier"
	if Verify(verifier, challengeS256(verifier), "SHA256") {
		t.Fatal("método desconocido aceptado")
	}
	if Verify(verifier, verifier, "") {
		t.Fatal("método vacío aceptado")
	}
}
