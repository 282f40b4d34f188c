// Package router arma el árbol de rutas HTTP del servidor.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/authcore/internal/http"
	oauthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/rate"
)

// Pinger es lo mínimo que el health check necesita del store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps contiene todas las dependencias del router.
type Deps struct {
	Services *oauth2.Services
	Store    Pinger

	// MetricsHandler sirve /metrics; nil desactiva el endpoint.
	MetricsHandler http.Handler

	// RateLimiter aplica sobre los endpoints OAuth; nil lo deshabilita.
	RateLimiter rate.Limiter
}

// New construye el router principal con la cadena de middlewares base.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	authorize := oauthctrl.NewAuthorizeController(deps.Services.Authorize)
	token := oauthctrl.NewTokenController(deps.Services.Token)
	introspect := oauthctrl.NewIntrospectController(deps.Services.Introspect)
	revoke := oauthctrl.NewRevokeController(deps.Services.Revoke)

	r.Route("/oauth2", func(r chi.Router) {
		r.Use(chiMW(
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithLogging(),
			httpx.WithMetrics(),
			mw.WithRateLimit(deps.RateLimiter),
			mw.WithNoStore(),
		)...)

		r.Get("/authorize", authorize.Authorize)
		r.Post("/authorize", authorize.Authorize)
		r.Post("/authorize/consent", authorize.Consent)
		r.Post("/token", token.Token)
		r.Post("/introspect", introspect.Introspect)
		r.Post("/revoke", revoke.Revoke)
	})

	// Health check público, sin logging (muy frecuente).
	r.Method(http.MethodGet, "/healthz", mw.Chain(
		http.HandlerFunc(healthHandler(deps.Store)),
		mw.WithRecover(),
		mw.WithRequestID(),
	))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

// chiMW adapta nuestros middlewares al formato de chi.Router.Use.
func chiMW(mws ...mw.Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, len(mws))
	for i, m := range mws {
		out[i] = m
	}
	return out
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if store != nil {
			if err := store.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
