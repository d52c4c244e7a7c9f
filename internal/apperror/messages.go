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

	// Oracle network errors
	CodeOracleUnavailable:   "Price oracle network unavailable",
	CodeOracleBadPayload:    "Price oracle returned malformed data",
	CodeAttestationDecoding: "Failed to decode price attestation",

	// Price data errors
	CodeDataUnavailable:  "Price data unavailable",
	CodePriceUnavailable: "No valid price for token pair",

	// Chain errors
	CodeChainConnectionFailed: "Failed to connect to EVM node",
	CodeChainRPCError:         "EVM RPC call failed",
	CodeContractCallFailed:    "Smart contract call failed",
	CodeFeeQueryFailed:        "Oracle update fee query failed",
	CodeFeedResolutionFailed:  "Failed to resolve price feed identifier",

	// Transaction assembly errors
	CodeEncodingFailure:    "Transaction calldata encoding failed",
	CodeUnsupportedToken:   "Unsupported token",
	CodeAmountOutOfRange:   "Amount must be positive",
	CodeIdenticalTokenPair: "Tokens in a pair must differ",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
