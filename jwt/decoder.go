package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrEthical07/goCart/session"
	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned when a token cannot be parsed. Callers must discard the
// persisted token when they see it.
var ErrDecode = errors.New("token decode failed")

// DefaultNamePlaceholder is the display name used when the token carries none.
const DefaultNamePlaceholder = "Người dùng"

// Claim names read from the token payload, in precedence order per field.
const (
	ClaimUserID   = "userId"
	ClaimSubject  = "sub"
	ClaimFullName = "fullName"
	ClaimName     = "name"
	ClaimEmail    = "email"
	ClaimRoles    = "roles"
)

// Config controls the fallbacks applied to absent claims.
type Config struct {
	NamePlaceholder string
	DefaultRole     string
}

// Decoder turns a session token into a [session.Session]. It is safe for concurrent use.
type Decoder struct {
	config Config
	parser *jwt.Parser
}

// NewDecoder returns a Decoder, filling empty Config fields with their defaults.
func NewDecoder(cfg Config) *Decoder {
	if cfg.NamePlaceholder == "" {
		cfg.NamePlaceholder = DefaultNamePlaceholder
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = session.RoleUser
	}
	return &Decoder{
		config: cfg,
		parser: jwt.NewParser(),
	}
}

// Decode parses token without verifying its signature and extracts the session fields:
// id from userId then sub, name from fullName then name then the placeholder, email
// as given, and role from roles then the default role.
func (d *Decoder) Decode(token string) (session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return session.Session{
		ID:    firstClaim(claims, ClaimUserID, ClaimSubject),
		Name:  orDefault(firstClaim(claims, ClaimFullName, ClaimName), d.config.NamePlaceholder),
		Email: firstClaim(claims, ClaimEmail),
		Role:  orDefault(roleClaim(claims), d.config.DefaultRole),
	}, nil
}

func firstClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if v := claimString(claims[name]); v != "" {
			return v
		}
	}
	return ""
}

// roleClaim accepts either a single role string or a list, taking the first entry.
func roleClaim(claims jwt.MapClaims) string {
	switch v := claims[ClaimRoles].(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func claimString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
