package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoSession is returned by mutations when no session with a user id is active.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidQuantity is returned before any state change for out-of-range quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidProduct is returned by Add for an empty product reference.
	ErrInvalidProduct = errors.New("invalid product reference")
)

// Gateway is the subset of the storefront API the reconciler drives.
type Gateway interface {
	ListCart(ctx context.Context) ([]Record, error)
	AddToCart(ctx context.Context, productRef string, quantity int) error
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	RemoveFromCart(ctx context.Context, lineID string) error
}

// SessionSource reports whether cart calls may be made.
type SessionSource interface {
	Active() bool
}

// Config wires optional behavior into a Reconciler.
type Config struct {
	RejectPolicy RejectPolicy
	// Logger defaults to a disabled logger when nil.
	Logger *zerolog.Logger
	Now    func() time.Time

	// OnSync is called after every Sync attempt that reached the gateway.
	OnSync func(ctx context.Context, lines int, err error)
	// OnReject is called when the gateway rejects a mutation.
	OnReject func(ctx context.Context, op Op, err error)
}

// Reconciler owns the local cart snapshot. It is safe for concurrent use; network
// calls are made without holding the snapshot lock.
type Reconciler struct {
	mu       sync.Mutex
	lines    Snapshot
	gateway  Gateway
	sessions SessionSource
	cfg      Config
	log      zerolog.Logger
}

// NewReconciler returns a Reconciler with an empty cart.
func NewReconciler(gateway Gateway, sessions SessionSource, cfg Config) *Reconciler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Reconciler{
		lines:    Snapshot{},
		gateway:  gateway,
		sessions: sessions,
		cfg:      cfg,
		log:      logger.With().Str("component", "cart").Logger(),
	}
}

// Snapshot returns a copy of the current local cart.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines.Clone()
}

// Reset empties the local cart without calling the server.
func (r *Reconciler) Reset() {
	r.replace(Snapshot{})
}

// Sync replaces the local cart with the server list. Without an active session the
// cart is emptied and no call is made. On failure the cart is emptied and the error
// is returned; there is no retry.
func (r *Reconciler) Sync(ctx context.Context) (Snapshot, error) {
	if r.sessions == nil || !r.sessions.Active() {
		r.Reset()
		return Snapshot{}, nil
	}

	records, err := r.gateway.ListCart(ctx)
	if err != nil {
		r.Reset()
		r.log.Error().Err(err).Msg("cart sync failed")
		r.notifySync(ctx, 0, err)
		return nil, err
	}

	// A logout while the list was in flight wins.
	if !r.sessions.Active() {
		r.Reset()
		return Snapshot{}, nil
	}

	lines := Normalize(records, r.newID)
	r.replace(lines)
	r.log.Debug().Int("lines", len(lines)).Msg("cart synced")
	r.notifySync(ctx, len(lines), nil)
	return lines.Clone(), nil
}

// Add merges quantity units of productRef into the cart: an existing line for the
// product grows, otherwise a placeholder line is appended.
func (r *Reconciler) Add(ctx context.Context, productRef string, quantity int) (Mutation, error) {
	if productRef == "" {
		return Mutation{Op: OpAdd, State: StateRejected, Err: ErrInvalidProduct}, ErrInvalidProduct
	}
	if quantity <= 0 {
		return Mutation{Op: OpAdd, State: StateRejected, Err: ErrInvalidQuantity}, ErrInvalidQuantity
	}
	return r.mutate(ctx, OpAdd,
		func(lines Snapshot) Snapshot { return mergeAdd(lines, productRef, quantity, r.newID) },
		func(ctx context.Context) error { return r.gateway.AddToCart(ctx, productRef, quantity) },
	)
}

// Remove drops the line with lineID.
func (r *Reconciler) Remove(ctx context.Context, lineID string) (Mutation, error) {
	return r.mutate(ctx, OpRemove,
		func(lines Snapshot) Snapshot { return removeLine(lines, lineID) },
		func(ctx context.Context) error { return r.gateway.RemoveFromCart(ctx, lineID) },
	)
}

// SetQuantity sets the quantity of the line with lineID. Zero is accepted and sent
// to the server as is; removing a line at zero is left to the caller.
func (r *Reconciler) SetQuantity(ctx context.Context, lineID string, quantity int) (Mutation, error) {
	if quantity < 0 {
		return Mutation{Op: OpSetQuantity, State: StateRejected, Err: ErrInvalidQuantity}, ErrInvalidQuantity
	}
	return r.mutate(ctx, OpSetQuantity,
		func(lines Snapshot) Snapshot { return replaceQuantity(lines, lineID, quantity) },
		func(ctx context.Context) error { return r.gateway.UpdateQuantity(ctx, lineID, quantity) },
	)
}

func (r *Reconciler) mutate(
	ctx context.Context,
	op Op,
	apply func(Snapshot) Snapshot,
	call func(context.Context) error,
) (Mutation, error) {
	if r.sessions == nil || !r.sessions.Active() {
		return Mutation{Op: op, State: StateRejected, Err: ErrNoSession}, ErrNoSession
	}

	r.mu.Lock()
	prior := r.lines.Clone()
	r.lines = apply(r.lines.Clone())
	optimistic := r.lines.Clone()
	r.mu.Unlock()

	m := Mutation{
		Op:         op,
		State:      StatePending,
		Prior:      prior,
		Optimistic: optimistic,
	}

	if err := call(ctx); err != nil {
		m.State = StateRejected
		m.Err = err
		// A teardown during the call already emptied the cart; keep it empty.
		if r.cfg.RejectPolicy == RestorePrior && r.sessions.Active() {
			r.replace(prior)
		}
		r.log.Warn().
			Err(err).
			Str("op", string(op)).
			Str("policy", r.cfg.RejectPolicy.String()).
			Msg("cart mutation rejected")
		if r.cfg.OnReject != nil {
			r.cfg.OnReject(ctx, op, err)
		}
		return m, err
	}

	confirmed, err := r.Sync(ctx)
	m.State = StateConfirmed
	m.Confirmed = confirmed
	m.SyncErr = err
	return m, nil
}

func (r *Reconciler) replace(lines Snapshot) {
	r.mu.Lock()
	r.lines = lines.Clone()
	r.mu.Unlock()
}

func (r *Reconciler) newID() string {
	return NewPlaceholderID(r.cfg.Now())
}

func (r *Reconciler) notifySync(ctx context.Context, lines int, err error) {
	if r.cfg.OnSync != nil {
		r.cfg.OnSync(ctx, lines, err)
	}
}
