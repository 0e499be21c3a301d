package goCart

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/internal/audit"
	"github.com/MrEthical07/goCart/jwt"
	"github.com/MrEthical07/goCart/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles a Client. Configure it during initialization; Build may be
// called once.
type Builder struct {
	config Config

	tokens     session.TokenStore
	redis      redis.UniversalClient
	httpClient *http.Client
	logger     *zerolog.Logger
	auditSink  AuditSink
	navigate   func(context.Context, Navigation)
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithTokenStore sets the token persistence. It takes precedence over WithRedis.
func (b *Builder) WithTokenStore(store session.TokenStore) *Builder {
	b.tokens = store
	return b
}

// WithRedis persists the token in Redis under
// <Session.RedisPrefix>:token:<Session.TokenKey>.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the gateway transport. The configured API timeout still
// bounds every request.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.logger = &log
	return b
}

// WithAuditSink enables audit dispatch to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithNavigator registers a callback for navigation the caller did not ask for,
// which is the redirect to the login route after a 401.
func (b *Builder) WithNavigator(fn func(context.Context, Navigation)) *Builder {
	b.navigate = fn
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now for placeholder ids and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- TOKEN STORE --------
	tokens := b.tokens
	switch {
	case tokens != nil:
	case b.redis != nil:
		tokens = session.NewRedisTokenStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.TokenKey)
	default:
		tokens = session.NewMemoryTokenStore().WithClock(now)
		logger.Debug().Msg("no token store configured, keeping the token in memory")
	}

	c := &Client{
		config:   cfg,
		log:      logger.With().Str("component", "client").Logger(),
		now:      now,
		tokens:   tokens,
		holder:   &session.Holder{},
		navigate: b.navigate,
		metrics:  NewMetrics(cfg.Metrics),
		decoder: jwt.NewDecoder(jwt.Config{
			NamePlaceholder: cfg.Session.NamePlaceholder,
			DefaultRole:     cfg.Session.DefaultRole,
		}),
	}

	// -------- GATEWAY --------
	gateway, err := api.New(api.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		HTTPClient:   b.httpClient,
		Token:        c.bearer,
		Unauthorized: c.teardown,
		Observe:      c.observeGateway,
		Logger:       &logger,
	})
	if err != nil {
		return nil, err
	}
	c.gateway = gateway

	// -------- CART --------
	c.cart = cart.NewReconciler(gateway, c.holder, cart.Config{
		RejectPolicy: cfg.Cart.RejectPolicy,
		Logger:       &logger,
		Now:          now,
		OnSync:       c.onCartSync,
		OnReject:     c.onCartReject,
	})

	// -------- AUDIT --------
	sink := b.auditSink
	if sink == nil {
		sink = NewLogSink(logger)
	}
	c.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)

	b.built = true
	return c, nil
}
