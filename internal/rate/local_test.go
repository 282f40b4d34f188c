package rate

import (
	"context"
	"testing"
	"time"
)

func TestLocalLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "client:c1")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d dentro del límite rechazado", i+1)
		}
	}

	res, err := l.Allow(ctx, "client:c1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("cuarto hit debe ser rechazado")
	}
	if res.RetryAfter <= 0 {
		t.Fatal("RetryAfter debe ser positivo al rechazar")
	}

	// Otra key no comparte contador.
	other, err := l.Allow(ctx, "client:c2")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !other.Allowed {
		t.Fatal("key distinta no debe estar limitada")
	}
}

func TestLocalLimiter_ContextCancelled(t *testing.T) {
	l := NewLocalLimiter(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Allow(ctx, "k"); err == nil {
		t.Fatal("ctx cancelado debe fallar")
	}
}
