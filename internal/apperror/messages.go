package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Swap execution
	CodeSlippage:           "Quoted price breached the caller bound",
	CodeOutOfStock:         "Pair holds fewer items than requested",
	CodeItemUnavailable:    "Named item is not held by the pair",
	CodeOutOfBounds:        "Curve computation outside representable range",
	CodeExpired:            "Batch deadline has passed",
	CodeInsufficientBudget: "Supplied value cannot cover the batch",
	CodePoolTypeInvalid:    "Operation not supported by this pool type",
	CodeUntrustedRouter:    "Router is not on the factory allow-list",
	CodeUntrustedCaller:    "Caller is not trusted by the factory",
	CodeCurveNotAllowed:    "Bonding curve is not on the factory allow-list",

	// Settlement
	CodeInsufficientBalance: "Account balance too low for transfer",
	CodeItemNotOwned:        "Item is not owned by the sender",
	CodePairExists:          "Pair already registered at this address",
	CodePairNotFound:        "No pair registered at this address",

	// Event feed
	CodeFeedClosed:        "Event feed is closed",
	CodeRateLimitExceeded: "Rate limit exceeded",
}
