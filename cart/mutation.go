package cart

// Op names a cart-mutating operation.
type Op string

const (
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpSetQuantity Op = "set_quantity"
)

// State is the position of a mutation in its optimistic lifecycle.
type State uint8

const (
	// StatePending means the optimistic snapshot is applied and the request is in flight.
	StatePending State = iota
	// StateConfirmed means the server accepted the mutation.
	StateConfirmed
	// StateRejected means the server or transport rejected the mutation.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectPolicy decides what a rejected mutation does to the local snapshot.
type RejectPolicy uint8

const (
	// DeferToSync keeps the optimistic snapshot until the next Sync overwrites it.
	DeferToSync RejectPolicy = iota
	// RestorePrior puts back the snapshot taken just before the mutation.
	RestorePrior
)

func (p RejectPolicy) String() string {
	switch p {
	case DeferToSync:
		return "defer_to_sync"
	case RestorePrior:
		return "restore_prior"
	default:
		return "unknown"
	}
}

// ParseRejectPolicy maps a config string to a RejectPolicy.
func ParseRejectPolicy(s string) (RejectPolicy, bool) {
	switch s {
	case "", "defer_to_sync":
		return DeferToSync, true
	case "restore_prior":
		return RestorePrior, true
	default:
		return DeferToSync, false
	}
}

// Mutation records the transitions of one cart mutation.
//
// Prior is the snapshot before the optimistic apply, Optimistic the snapshot right
// after it. Confirmed is the server list fetched after a successful call; it is nil
// when that list failed, in which case SyncErr is set and the local cart is empty.
type Mutation struct {
	Op         Op
	State      State
	Prior      Snapshot
	Optimistic Snapshot
	Confirmed  Snapshot
	Err        error
	SyncErr    error
}
