package goCart

import (
	"context"
	"errors"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/session"
)

const (
	AuditSessionInitialized   = "session_initialized"
	AuditSessionDecodeFailed  = "session_decode_failed"
	AuditLogin                = "login"
	AuditLogout               = "logout"
	AuditSessionTeardown      = "session_teardown"
	AuditCartSyncFailed       = "cart_sync_failed"
	AuditCartMutationRejected = "cart_mutation_rejected"
	AuditCheckoutSuccess      = "checkout_success"
	AuditCheckoutFailure      = "checkout_failure"
)

// AuditErrorCode is the stable error classification carried in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrUnauthorized     AuditErrorCode = "unauthorized"
	auditErrInvalidToken     AuditErrorCode = "invalid_token"
	auditErrNoSession        AuditErrorCode = "no_session"
	auditErrInvalidInput     AuditErrorCode = "invalid_input"
	auditErrOperationFailed  AuditErrorCode = "operation_failed"
	auditErrStoreUnavailable AuditErrorCode = "store_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	s session.Session,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: c.now().UTC(),
		Type:      eventType,
		UserID:    s.ID,
		Role:      s.Role,
		TraceID:   traceIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

// currentSession returns the held session or the zero value.
func (c *Client) currentSession() session.Session {
	s, _ := c.holder.Load()
	return s
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrEmptyToken):
		return auditErrInvalidToken
	case errors.Is(err, cart.ErrNoSession):
		return auditErrNoSession
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct):
		return auditErrInvalidInput
	case errors.Is(err, api.ErrOperationFailed):
		return auditErrOperationFailed
	case errors.Is(err, session.ErrRedisUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}
