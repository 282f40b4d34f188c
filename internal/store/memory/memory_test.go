package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

func TestClients_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetClient(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, got %v", err)
	}

	c := repository.Client{ID: "id-1", ClientID: "web", Name: "Web", Type: "confidential"}
	if err := s.SaveClient(ctx, &c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetClient(ctx, "web")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Web" {
		t.Fatalf("client corrupto: %+v", got)
	}

	// Mutar el retorno no debe afectar lo guardado.
	got.Name = "hacked"
	again, _ := s.GetClient(ctx, "web")
	if again.Name != "Web" {
		t.Fatal("el store devuelve referencias compartidas")
	}
}

func TestSaveClient_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := repository.Client{ID: "id-1", ClientID: "web", Name: "Web", Type: "confidential"}
	if err := s.SaveClient(ctx, &c); err != nil {
		t.Fatalf("save: %v", err)
	}
	dup := repository.Client{ID: "id-2", ClientID: "web", Name: "Otro"}
	if err := s.SaveClient(ctx, &dup); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("esperaba ErrConflict, got %v", err)
	}

	// El registro original queda intacto.
	got, err := s.GetClient(ctx, "web")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Web" || got.ID != "id-1" {
		t.Fatalf("el duplicado pisó el client: %+v", got)
	}
}

func TestConsumeAuthorizationCode_OneShot(t *testing.T) {
	ctx := context.Background()
	s := New()

	code := repository.AuthorizationCode{
		CodeHash:  "hash-1",
		ClientID:  "web",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := s.CreateAuthorizationCode(ctx, &code); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ConsumeAuthorizationCode(ctx, "hash-1")
	if err != nil {
		t.Fatalf("primer consume: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("code corrupto: %+v", got)
	}
	if _, err := s.ConsumeAuthorizationCode(ctx, "hash-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("segundo consume debe ser ErrNotFound, got %v", err)
	}
}

// Bajo canje concurrente del mismo code, exactamente un goroutine gana.
func TestConsumeAuthorizationCode_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	code := repository.AuthorizationCode{
		CodeHash:  "hash-race",
		ClientID:  "web",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := s.CreateAuthorizationCode(ctx, &code); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 50
	var wins atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.ConsumeAuthorizationCode(ctx, "hash-race"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("esperaba exactamente 1 ganador, got %d", got)
	}
}

func TestConsumeRefreshToken_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	rt := repository.RefreshToken{
		TokenHash: "rt-race",
		ClientID:  "web",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := s.CreateRefreshToken(ctx, &rt); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 50
	var wins atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.ConsumeRefreshToken(ctx, "rt-race"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("esperaba exactamente 1 ganador, got %d", got)
	}
}

// Un registro con expires_at en el pasado se trata como ausente aunque el
// janitor todavía no lo haya barrido.
func TestExpiredTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	s := New()

	past := time.Now().Add(-time.Second)
	_ = s.CreateAuthorizationCode(ctx, &repository.AuthorizationCode{CodeHash: "old-code", ExpiresAt: past})
	_ = s.CreateAccessToken(ctx, &repository.AccessToken{Token: "old-at", ExpiresAt: past})
	_ = s.CreateRefreshToken(ctx, &repository.RefreshToken{TokenHash: "old-rt", ExpiresAt: past})

	if _, err := s.ConsumeAuthorizationCode(ctx, "old-code"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("code expirado: esperaba ErrNotFound, got %v", err)
	}
	if _, err := s.GetAccessToken(ctx, "old-at"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("access expirado: esperaba ErrNotFound, got %v", err)
	}
	if _, err := s.ConsumeRefreshToken(ctx, "old-rt"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("refresh expirado: esperaba ErrNotFound, got %v", err)
	}
}

func TestDeleteReportsWhetherRemoved(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateAccessToken(ctx, &repository.AccessToken{Token: "at-1", ExpiresAt: time.Now().Add(time.Minute)})

	deleted, err := s.DeleteAccessToken(ctx, "at-1")
	if err != nil || !deleted {
		t.Fatalf("primer delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = s.DeleteAccessToken(ctx, "at-1")
	if err != nil || deleted {
		t.Fatalf("segundo delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := s.DeleteRefreshToken(ctx, "nope"); err != nil {
		t.Fatalf("delete de inexistente no debe fallar: %v", err)
	}
}

func TestConsents_Upsert(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetConsent(ctx, "u1", "web"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, got %v", err)
	}
	if err := s.UpsertConsent(ctx, "u1", "web", "read"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertConsent(ctx, "u1", "web", "read write"); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}
	c, err := s.GetConsent(ctx, "u1", "web")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Scope != "read write" {
		t.Fatalf("scope no actualizado: %q", c.Scope)
	}
}

func TestContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.GetClient(ctx, "web"); err == nil {
		t.Fatal("ctx cancelado debe fallar")
	}
	if err := s.CreateAccessToken(ctx, &repository.AccessToken{Token: "x"}); err == nil {
		t.Fatal("ctx cancelado debe fallar")
	}
}
