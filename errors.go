package goCart

import (
	"errors"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/cart"
)

var (
	// ErrClientNotReady is returned by every operation on a nil or closed Client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrEmptyToken is returned by Login for an empty token; no state changes.
	ErrEmptyToken = errors.New("empty token")
	// ErrTokenInvalid is returned by Login when the token cannot be decoded. The
	// persisted token has been removed by the time it is returned.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrNoSession is returned by cart and order operations without a session id.
	ErrNoSession = cart.ErrNoSession
	// ErrUnauthorized matches gateway 401 failures. The session has been torn down
	// by the time it is returned.
	ErrUnauthorized = api.ErrUnauthorized
	// ErrOperationFailed matches every other gateway failure.
	ErrOperationFailed = api.ErrOperationFailed
	// ErrInvalidQuantity is returned for out-of-range cart quantities.
	ErrInvalidQuantity = cart.ErrInvalidQuantity
	// ErrInvalidProduct is returned by AddToCart for an empty product reference.
	ErrInvalidProduct = cart.ErrInvalidProduct
)
