package goCart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/session"
)

// Initialize restores the session from the persisted token. Without a token the
// session is nil. A token that cannot be decoded is deleted and the session is nil;
// that case is logged and audited but not returned as an error. A restored session
// with a user id triggers a cart sync whose failure only empties the cart.
//
// Only token store failures other than not-found are returned.
func (c *Client) Initialize(ctx context.Context) (*session.Session, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	token, err := c.tokens.Get(ctx)
	if errors.Is(err, session.ErrTokenNotFound) {
		c.holder.Clear()
		c.cart.Reset()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	s, err := c.decoder.Decode(token)
	if err != nil {
		c.discardToken(ctx)
		c.holder.Clear()
		c.cart.Reset()
		c.metricInc(MetricSessionDecodeFailed)
		c.log.Warn().Err(err).Str("trace_id", traceIDFromContext(ctx)).Msg("discarding undecodable session token")
		c.emitAudit(ctx, AuditSessionDecodeFailed, false, session.Session{}, ErrTokenInvalid, nil)
		return nil, nil
	}

	c.holder.Store(s)
	c.metricInc(MetricSessionRestored)
	c.log.Debug().Str("user_id", s.ID).Str("role", s.Role).Msg("session restored")
	c.emitAudit(ctx, AuditSessionInitialized, true, s, nil, nil)

	if s.HasID() {
		_, _ = c.cart.Sync(ctx)
	}

	// A 401 during the sync tears the session down again.
	current, ok := c.holder.Load()
	if !ok {
		return nil, nil
	}
	return &current, nil
}

// Login installs token as the current session: it is persisted with the
// configured TTL, decoded, and the cart is synced. A non-empty explicitRole
// replaces the decoded role. An empty token returns ErrEmptyToken without touching
// any state; an undecodable one is deleted again and ErrTokenInvalid is returned.
func (c *Client) Login(ctx context.Context, token, explicitRole string) (LoginResult, error) {
	if err := c.ready(); err != nil {
		return LoginResult{}, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		c.metricInc(MetricLoginFailure)
		return LoginResult{}, ErrEmptyToken
	}

	if err := c.tokens.Set(ctx, token, c.config.Session.TokenTTL); err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, AuditLogin, false, session.Session{}, err, nil)
		return LoginResult{}, fmt.Errorf("persist token: %w", err)
	}

	s, err := c.decoder.Decode(token)
	if err != nil {
		c.discardToken(ctx)
		c.holder.Clear()
		c.cart.Reset()
		c.metricInc(MetricLoginFailure)
		c.log.Warn().Err(err).Str("trace_id", traceIDFromContext(ctx)).Msg("login token rejected")
		c.emitAudit(ctx, AuditLogin, false, session.Session{}, ErrTokenInvalid, nil)
		return LoginResult{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if role := strings.TrimSpace(explicitRole); role != "" {
		s.Role = role
	}

	c.holder.Store(s)
	c.metricInc(MetricLoginSuccess)
	c.log.Info().Str("user_id", s.ID).Str("role", s.Role).Msg("logged in")
	c.emitAudit(ctx, AuditLogin, true, s, nil, nil)

	_, _ = c.cart.Sync(ctx)

	// A 401 during the sync tears the session down again.
	if _, ok := c.holder.Load(); !ok {
		c.metricInc(MetricLoginFailure)
		return LoginResult{}, fmt.Errorf("login: %w", ErrUnauthorized)
	}
	return LoginResult{Session: s, Landing: c.landingFor(s)}, nil
}

// Logout deletes the persisted token, clears the session and empties the cart. It
// returns the login route. Token store failures are logged, never returned.
func (c *Client) Logout(ctx context.Context) Navigation {
	if c == nil {
		return Navigation{}
	}
	prev := c.currentSession()

	c.discardToken(ctx)
	c.holder.Clear()
	c.cart.Reset()

	c.metricInc(MetricLogout)
	c.log.Info().Str("user_id", prev.ID).Msg("logged out")
	c.emitAudit(ctx, AuditLogout, true, prev, nil, nil)

	return Navigation{Path: c.config.Routes.Login}
}

// SignIn authenticates against the backend and logs the returned token in. role,
// when non-empty, wins over the role reported by the backend.
func (c *Client) SignIn(ctx context.Context, email, password, role string) (LoginResult, error) {
	if err := c.ready(); err != nil {
		return LoginResult{}, err
	}

	resp, err := c.gateway.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, AuditLogin, false, session.Session{}, err, func() map[string]string {
			return map[string]string{"source": "sign_in"}
		})
		return LoginResult{}, err
	}

	if role == "" {
		role = resp.Role
	}
	return c.Login(ctx, resp.Token, role)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.gateway.Register(ctx, req)
}

// Session returns the current session.
func (c *Client) Session() (session.Session, bool) {
	if c == nil {
		return session.Session{}, false
	}
	return c.holder.Load()
}

// Active reports whether a session with a user id is held.
func (c *Client) Active() bool {
	return c != nil && c.holder.Active()
}

// teardown runs synchronously inside the gateway call that saw a 401, so the
// caller observes a cleared session by the time the error is returned.
func (c *Client) teardown(ctx context.Context) {
	prev := c.currentSession()

	c.discardToken(ctx)
	c.holder.Clear()
	c.cart.Reset()

	c.metricInc(MetricSessionTeardown)
	c.log.Warn().
		Str("user_id", prev.ID).
		Str("trace_id", traceIDFromContext(ctx)).
		Msg("session rejected by server, tearing down")
	c.emitAudit(ctx, AuditSessionTeardown, false, prev, api.ErrUnauthorized, nil)

	if c.navigate != nil {
		c.navigate(ctx, Navigation{Path: c.config.Routes.Login})
	}
}

func (c *Client) discardToken(ctx context.Context) {
	if err := c.tokens.Delete(ctx); err != nil {
		c.log.Error().Err(err).Msg("delete persisted token")
	}
}

func (c *Client) landingFor(s session.Session) Navigation {
	if s.IsAdmin() {
		return Navigation{Path: c.config.Routes.AdminLanding}
	}
	return Navigation{Path: c.config.Routes.DefaultLanding}
}
