package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap execution error codes
const (
	// Quoted price breached the caller-supplied bound
	CodeSlippage Code = "SLIPPAGE"

	// Inventory errors
	CodeOutOfStock      Code = "OUT_OF_STOCK"
	CodeItemUnavailable Code = "ITEM_UNAVAILABLE"

	// Curve math outside the representable range (invalid delta, overflow)
	CodeOutOfBounds Code = "OUT_OF_BOUNDS"

	// Batch-level conditions
	CodeExpired            Code = "EXPIRED"
	CodeInsufficientBudget Code = "INSUFFICIENT_BUDGET"

	// Pair configuration errors
	CodePoolTypeInvalid Code = "POOL_TYPE_INVALID"

	// Trust / allow-list rejections
	CodeUntrustedRouter Code = "UNTRUSTED_ROUTER"
	CodeUntrustedCaller Code = "UNTRUSTED_CALLER"
	CodeCurveNotAllowed Code = "CURVE_NOT_ALLOWED"
)

// Settlement error codes
const (
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeItemNotOwned        Code = "ITEM_NOT_OWNED"
	CodePairExists          Code = "PAIR_EXISTS"
	CodePairNotFound        Code = "PAIR_NOT_FOUND"
)

// Event feed error codes
const (
	CodeFeedClosed        Code = "FEED_CLOSED"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
)
