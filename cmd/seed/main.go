package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2/scope"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
)

// ---------- helpers env ----------
func strEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func csvFlag(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// seed registra (o actualiza) un client OAuth directamente contra el store.
// Pensado para entornos de dev y para el primer client de un deployment.
func main() {
	_ = godotenv.Load()

	var (
		cfgPath    = flag.String("config", strEnv("CONFIG_PATH", "config.yaml"), "ruta al archivo de configuración")
		clientID   = flag.String("client-id", strEnv("SEED_CLIENT_ID", ""), "client_id a registrar")
		name       = flag.String("name", strEnv("SEED_CLIENT_NAME", ""), "nombre legible del client")
		clientType = flag.String("type", strEnv("SEED_CLIENT_TYPE", "confidential"), "confidential|public")
		secret     = flag.String("secret", strEnv("SEED_CLIENT_SECRET", ""), "client_secret en claro (vacío => se genera uno)")
		redirects  = flag.String("redirect-uris", strEnv("SEED_REDIRECT_URIS", ""), "redirect URIs separadas por coma")
		grants     = flag.String("grant-types", strEnv("SEED_GRANT_TYPES", "authorization_code,refresh_token"), "grant types separados por coma")
		scopes     = flag.String("scope", strEnv("SEED_SCOPE", ""), "scopes permitidos (space-separated)")
	)
	flag.Parse()

	if *clientID == "" {
		log.Fatal("seed: --client-id es requerido (o SEED_CLIENT_ID)")
	}
	if *clientType != "confidential" && *clientType != "public" {
		log.Fatalf("seed: tipo inválido %q (confidential|public)", *clientType)
	}

	allowed := scope.Parse(*scopes)
	for _, s := range allowed {
		if !scope.ValidName(s) {
			log.Fatalf("seed: scope inválido %q", s)
		}
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("seed: config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatalf("seed: store: %v", err)
	}
	defer func() { _ = st.Close() }()

	client := repository.Client{
		ID:           uuid.NewString(),
		ClientID:     *clientID,
		Name:         *name,
		Type:         *clientType,
		RedirectURIs: csvFlag(*redirects),
		GrantTypes:   csvFlag(*grants),
		Scope:        strings.Join(allowed, " "),
	}
	if client.Name == "" {
		client.Name = client.ClientID
	}

	plainSecret := *secret
	if *clientType == "confidential" {
		if plainSecret == "" {
			plainSecret, err = tokens.GenerateOpaqueToken(32)
			if err != nil {
				log.Fatalf("seed: secret: %v", err)
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(plainSecret), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("seed: bcrypt: %v", err)
		}
		client.SecretHash = string(hash)
	}

	if err := st.SaveClient(ctx, &client); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Fatalf("seed: client %q ya existe", client.ClientID)
		}
		log.Fatalf("seed: save client: %v", err)
	}

	log.Printf("client %q registrado (type=%s driver=%s)", client.ClientID, client.Type, cfg.Storage.Driver)
	if *clientType == "confidential" && *secret == "" {
		// Solo se imprime cuando el secret fue generado acá; no vuelve a estar disponible.
		log.Printf("client_secret generado: %s", plainSecret)
	}
}
