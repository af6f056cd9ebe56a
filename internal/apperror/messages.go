package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Input validation
	CodeInvalidAmount:    "Invalid amount",
	CodeInvalidSlippage:  "Invalid slippage tolerance",
	CodeInvalidRecipient: "Invalid recipient",

	// Quoting
	CodeNoRoute:            "No route found for this trade",
	CodeStaleQuote:         "Price rate updated beyond expected slippage rate",
	CodePriceImpactTooHigh: "Price impact too high",
	CodeAggregatorError:    "Price aggregator error",

	// Approval
	CodeInsufficientAllowance: "Insufficient token allowance",
	CodeApprovalFailed:        "Token approval failed",

	// Submission
	CodeUserRejected:     "Transaction rejected",
	CodeSubmissionFailed: "Swap failed",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeReceiptNotFound:          "Transaction receipt not found",
	CodeContractCallFailed:       "Smart contract call failed",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
