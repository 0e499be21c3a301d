package goCart

import (
	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/session"
)

// Navigation is a route the caller should move to.
type Navigation struct {
	Path string
}

// LoginResult is the outcome of a successful Login.
type LoginResult struct {
	Session session.Session
	// Landing is the admin dashboard for ADMIN sessions and the storefront home
	// otherwise.
	Landing Navigation
}

// RegisterRequest is the account creation input.
type RegisterRequest = api.RegisterRequest
