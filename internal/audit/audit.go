// Package audit emite eventos de seguridad en un trail separado del log
// operacional. Hoy sale por el logger estructurado; a futuro puede colgarse
// un sink externo.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Event names.
const (
	EventConsentGranted = "consent.granted"
	EventConsentDenied  = "consent.denied"
	EventTokenIssued    = "token.issued"
	EventTokenRevoked   = "token.revoked"
)

// Log registra un evento de auditoría con sus atributos.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, fields...)
}
