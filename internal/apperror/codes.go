package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
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

// Transaction-preparation error codes
const (
	// Oracle network (Hermes) errors
	CodeOracleUnavailable   Code = "ORACLE_UNAVAILABLE"
	CodeOracleBadPayload    Code = "ORACLE_BAD_PAYLOAD"
	CodeAttestationDecoding Code = "ATTESTATION_DECODING_FAILED"

	// Price data errors
	CodeDataUnavailable  Code = "DATA_UNAVAILABLE"
	CodePriceUnavailable Code = "PRICE_UNAVAILABLE"

	// Chain (Flow EVM) errors
	CodeChainConnectionFailed Code = "CHAIN_CONNECTION_FAILED"
	CodeChainRPCError         Code = "CHAIN_RPC_ERROR"
	CodeContractCallFailed    Code = "CONTRACT_CALL_FAILED"
	CodeFeeQueryFailed        Code = "FEE_QUERY_FAILED"
	CodeFeedResolutionFailed  Code = "FEED_RESOLUTION_FAILED"

	// Transaction assembly errors
	CodeEncodingFailure    Code = "ENCODING_FAILURE"
	CodeUnsupportedToken   Code = "UNSUPPORTED_TOKEN"
	CodeAmountOutOfRange   Code = "AMOUNT_OUT_OF_RANGE"
	CodeIdenticalTokenPair Code = "IDENTICAL_TOKEN_PAIR"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
