package goCart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/MrEthical07/goCart/cart"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv.
const EnvPrefix = "GOCART_"

// LoadConfigFromEnv returns DefaultConfig overlaid with GOCART_* variables. Each
// named dotenv file is loaded first; variables already present in the process
// environment win over file values. Missing files are skipped.
//
// Recognized variables: API_BASE_URL, API_TIMEOUT, SESSION_TOKEN_KEY,
// SESSION_REDIS_PREFIX, SESSION_TOKEN_TTL, SESSION_NAME_PLACEHOLDER,
// SESSION_DEFAULT_ROLE, CART_REJECT_POLICY, ORDERS_PAGE_SIZE, CATALOG_PAGE_SIZE,
// AUDIT_ENABLED, AUDIT_BUFFER_SIZE, AUDIT_DROP_IF_FULL, METRICS_ENABLED, METRICS_LATENCY.
func LoadConfigFromEnv(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	r := envReader{}

	r.str("API_BASE_URL", &cfg.API.BaseURL)
	r.duration("API_TIMEOUT", &cfg.API.Timeout)

	r.str("SESSION_TOKEN_KEY", &cfg.Session.TokenKey)
	r.str("SESSION_REDIS_PREFIX", &cfg.Session.RedisPrefix)
	r.duration("SESSION_TOKEN_TTL", &cfg.Session.TokenTTL)
	r.str("SESSION_NAME_PLACEHOLDER", &cfg.Session.NamePlaceholder)
	r.str("SESSION_DEFAULT_ROLE", &cfg.Session.DefaultRole)

	if v, ok := os.LookupEnv(EnvPrefix + "CART_REJECT_POLICY"); ok {
		p, known := cart.ParseRejectPolicy(v)
		if !known {
			r.fail("CART_REJECT_POLICY", fmt.Errorf("unknown policy %q", v))
		}
		cfg.Cart.RejectPolicy = p
	}

	r.integer("ORDERS_PAGE_SIZE", &cfg.Orders.PageSize)
	r.integer("CATALOG_PAGE_SIZE", &cfg.Catalog.PageSize)

	r.boolean("AUDIT_ENABLED", &cfg.Audit.Enabled)
	r.integer("AUDIT_BUFFER_SIZE", &cfg.Audit.BufferSize)
	r.boolean("AUDIT_DROP_IF_FULL", &cfg.Audit.DropIfFull)

	r.boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	r.boolean("METRICS_LATENCY", &cfg.Metrics.EnableLatencyHistograms)

	if r.err != nil {
		return Config{}, r.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envReader keeps the first parse error so callers check once.
type envReader struct {
	err error
}

func (r *envReader) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
		*dst = v
	}
}

func (r *envReader) duration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(name, err)
		return
	}
	*dst = d
}

func (r *envReader) integer(name string, dst *int) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(name, err)
		return
	}
	*dst = n
}

func (r *envReader) boolean(name string, dst *bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(name, err)
		return
	}
	*dst = b
}
