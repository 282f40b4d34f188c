package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// IntrospectController handles POST /oauth2/introspect.
type IntrospectController struct {
	service oauth2.IntrospectService
}

// NewIntrospectController creates the controller.
func NewIntrospectController(s oauth2.IntrospectService) *IntrospectController {
	return &IntrospectController{service: s}
}

// Introspect handles POST /oauth2/introspect.
// Always answers 200 with an introspection object; an unknown or foreign
// token is simply {"active": false}.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.introspect"))

	if !parseForm(w, r) {
		return
	}

	clientID, _ := clientCredentials(r)
	token := strings.TrimSpace(r.PostForm.Get("token"))

	res, err := c.service.Introspect(ctx, token, strings.TrimSpace(clientID))
	if err != nil {
		log.Error("introspection failed", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
