package domain

// ExecutionState is the trade execution lifecycle.
type ExecutionState int

const (
	// StateIdle means no execution is in progress.
	StateIdle ExecutionState = iota
	// StateAwaitingConfirmation means a quote was captured and shown for review.
	StateAwaitingConfirmation
	// StateSubmitting means the transaction is being built and signed.
	StateSubmitting
	// StatePendingOnChain means the transaction was broadcast and awaits a receipt.
	StatePendingOnChain
	// StateSucceeded means the swap confirmed on chain.
	StateSucceeded
	// StateFailed means the execution attempt ended with an error.
	StateFailed
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingConfirmation:
		return "AWAITING_CONFIRMATION"
	case StateSubmitting:
		return "SUBMITTING"
	case StatePendingOnChain:
		return "PENDING_ON_CHAIN"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "INVALID"
	}
}

// Terminal reports whether the state ends an execution attempt.
func (s ExecutionState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
