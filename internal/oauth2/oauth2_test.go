package oauth2_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/store/memory"
)

const (
	testRedirect = "https://app.example.com/cb"
	testSecret   = "s3cret"
	testIssuer   = "https://auth.example.com"
)

func newFixture(t *testing.T) (*memory.Store, oauth2.Services) {
	t.Helper()
	st := memory.New()
	svcs := oauth2.NewServices(oauth2.Deps{
		Store:  st,
		Issuer: testIssuer,
	})
	return st, svcs
}

// seedConfidential registra el client confidencial estándar de los tests:
// c1, secret "s3cret", scope "user:read user:write", los tres grants.
func seedConfidential(t *testing.T, st *memory.Store) *repository.Client {
	t.Helper()
	return seedConfidentialWith(t, st, nil)
}

// seedConfidentialWith ajusta el client estándar antes de guardarlo (el store
// rechaza duplicados, así que las variantes se arman acá).
func seedConfidentialWith(t *testing.T, st *memory.Store, mutate func(*repository.Client)) *repository.Client {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testSecret), bcrypt.MinCost)
	require.NoError(t, err)
	c := &repository.Client{
		ID:           "internal-c1",
		ClientID:     "c1",
		Name:         "Test App",
		Type:         repository.ClientTypeConfidential,
		SecretHash:   string(hash),
		RedirectURIs: []string{testRedirect, "https://app.example.com/alt"},
		GrantTypes:   []string{"authorization_code", "refresh_token", "client_credentials"},
		Scope:        "user:read user:write",
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, st.SaveClient(context.Background(), c))
	return c
}

func seedPublic(t *testing.T, st *memory.Store) *repository.Client {
	t.Helper()
	return seedPublicWith(t, st, nil)
}

func seedPublicWith(t *testing.T, st *memory.Store, mutate func(*repository.Client)) *repository.Client {
	t.Helper()
	c := &repository.Client{
		ID:           "internal-p1",
		ClientID:     "p1",
		Name:         "Mobile App",
		Type:         repository.ClientTypePublic,
		RedirectURIs: []string{testRedirect},
		GrantTypes:   []string{"authorization_code", "refresh_token"},
		Scope:        "user:read",
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, st.SaveClient(context.Background(), c))
	return c
}

func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// obtainCode corre el flujo authorize completo (con Approve si hace falta) y
// devuelve el code extraído del redirect.
func obtainCode(t *testing.T, svcs oauth2.Services, req oauth2.AuthorizeRequest) string {
	t.Helper()
	ctx := context.Background()

	res, err := svcs.Authorize.Authorize(ctx, req)
	require.NoError(t, err)
	if res.Type == oauth2.AuthResultConsentRequired {
		res, err = svcs.Authorize.Approve(ctx, req)
		require.NoError(t, err)
	}
	require.Equal(t, oauth2.AuthResultRedirect, res.Type, "esperaba redirect, got %+v", res)
	return queryParam(t, res.RedirectURL, "code")
}

func queryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query().Get(key)
}

// pastExpiry es un ExpiresAt vencido para insertar registros "lazy expired".
func pastExpiry() time.Time { return time.Now().Add(-time.Second) }
