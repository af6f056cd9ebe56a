package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap-specific error codes
const (
	// Input validation
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeInvalidSlippage  Code = "INVALID_SLIPPAGE"
	CodeInvalidRecipient Code = "INVALID_RECIPIENT"

	// Quoting
	CodeNoRoute            Code = "NO_ROUTE"
	CodeStaleQuote         Code = "STALE_QUOTE"
	CodePriceImpactTooHigh Code = "PRICE_IMPACT_TOO_HIGH"
	CodeAggregatorError    Code = "AGGREGATOR_ERROR"

	// Approval
	CodeInsufficientAllowance Code = "INSUFFICIENT_ALLOWANCE"
	CodeApprovalFailed        Code = "APPROVAL_FAILED"

	// Submission
	CodeUserRejected     Code = "USER_REJECTED"
	CodeSubmissionFailed Code = "SUBMISSION_FAILED"

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeReceiptNotFound          Code = "RECEIPT_NOT_FOUND"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
