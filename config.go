package goCart

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/catalog"
	"github.com/MrEthical07/goCart/jwt"
	"github.com/MrEthical07/goCart/order"
	"github.com/MrEthical07/goCart/session"
)

// Config is the complete client configuration. Start from [DefaultConfig] and
// override what differs; Build clones it, so later changes have no effect.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Routes  RoutesConfig
	Cart    CartConfig
	Orders  OrdersConfig
	Catalog CatalogConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig points the gateway at the storefront backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token persistence and the identity fallbacks applied
// when a token lacks claims.
type SessionConfig struct {
	// TokenKey names the persisted token. With Redis the full key is
	// <RedisPrefix>:token:<TokenKey>.
	TokenKey    string
	RedisPrefix string
	TokenTTL    time.Duration

	NamePlaceholder string
	DefaultRole     string
}

// RoutesConfig holds the navigation targets returned by login, logout and the
// route guard.
type RoutesConfig struct {
	AdminLanding   string
	DefaultLanding string
	Login          string
	NotFound       string
}

// CartConfig controls the reconciler.
type CartConfig struct {
	RejectPolicy cart.RejectPolicy
}

// OrdersConfig controls the order list view.
type OrdersConfig struct {
	PageSize int
}

// CatalogConfig controls the product listing.
type CatalogConfig struct {
	PageSize int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the storefront defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: api.DefaultBaseURL,
			Timeout: api.DefaultTimeout,
		},
		Session: SessionConfig{
			TokenKey:        "authToken",
			RedisPrefix:     "gc",
			TokenTTL:        session.DefaultTokenTTL,
			NamePlaceholder: jwt.DefaultNamePlaceholder,
			DefaultRole:     session.RoleUser,
		},
		Routes: RoutesConfig{
			AdminLanding:   "/admin/dashboard",
			DefaultLanding: "/",
			Login:          "/login",
			NotFound:       "/404",
		},
		Cart: CartConfig{
			RejectPolicy: cart.DeferToSync,
		},
		Orders: OrdersConfig{
			PageSize: order.DefaultPageSize,
		},
		Catalog: CatalogConfig{
			PageSize: catalog.DefaultPageSize,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API BaseURL must be an absolute http(s) URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}

	// Session
	if strings.TrimSpace(c.Session.TokenKey) == "" {
		return errors.New("Session TokenKey must be set")
	}
	if strings.ContainsAny(c.Session.TokenKey, " :") {
		return errors.New("Session TokenKey must not contain spaces or colons")
	}
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix must be set")
	}
	if c.Session.TokenTTL <= 0 {
		return errors.New("Session TokenTTL must be > 0")
	}
	if strings.TrimSpace(c.Session.DefaultRole) == "" {
		return errors.New("Session DefaultRole must be set")
	}

	// Routes
	for name, route := range map[string]string{
		"AdminLanding":   c.Routes.AdminLanding,
		"DefaultLanding": c.Routes.DefaultLanding,
		"Login":          c.Routes.Login,
		"NotFound":       c.Routes.NotFound,
	} {
		if !strings.HasPrefix(route, "/") {
			return errors.New("Routes " + name + " must be an absolute path")
		}
	}

	// Cart
	if c.Cart.RejectPolicy != cart.DeferToSync && c.Cart.RejectPolicy != cart.RestorePrior {
		return errors.New("Cart RejectPolicy is invalid")
	}

	// Orders
	if c.Orders.PageSize <= 0 || c.Orders.PageSize > 100 {
		return errors.New("Orders PageSize must be in [1, 100]")
	}
	if c.Catalog.PageSize <= 0 || c.Catalog.PageSize > 100 {
		return errors.New("Catalog PageSize must be in [1, 100]")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
