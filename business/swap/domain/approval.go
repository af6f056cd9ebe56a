package domain

// ApprovalState tracks the ERC-20 allowance of the spender contract for the
// trade's input token.
type ApprovalState int

const (
	// ApprovalUnknown means the allowance has not been read yet.
	ApprovalUnknown ApprovalState = iota
	// ApprovalNotRequired covers native-coin inputs, which need no allowance.
	ApprovalNotRequired
	// ApprovalRequired means the current allowance is below the trade input.
	ApprovalRequired
	// ApprovalPending means an approve transaction is in flight.
	ApprovalPending
	// ApprovalApproved means the allowance covers the trade input.
	ApprovalApproved
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalUnknown:
		return "UNKNOWN"
	case ApprovalNotRequired:
		return "NOT_REQUIRED"
	case ApprovalRequired:
		return "NOT_APPROVED"
	case ApprovalPending:
		return "PENDING"
	case ApprovalApproved:
		return "APPROVED"
	default:
		return "INVALID"
	}
}
