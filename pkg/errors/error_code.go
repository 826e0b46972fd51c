package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter        ErrorCode = 100
	ErrCodeInvalidConfiguration    ErrorCode = 101
	ErrCodeInvalidWindow           ErrorCode = 102
	ErrCodeInvalidWindowOrder      ErrorCode = 103
	ErrCodeInvalidMultiplier       ErrorCode = 104
	ErrCodeInvalidInitialCash      ErrorCode = 105
	ErrCodeNonIncreasingTime       ErrorCode = 106
	ErrCodeInvalidPriceBar         ErrorCode = 107
	ErrCodeSignalLengthMismatch    ErrorCode = 108
	ErrCodeInvalidType             ErrorCode = 109
	ErrCodeMissingParameter        ErrorCode = 110
	ErrCodeIndicatorLengthMismatch ErrorCode = 111

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeUnsupportedFormat     ErrorCode = 203
	ErrCodeWriteFailed           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound      ErrorCode = 400
	ErrCodeStrategyAlreadyExists ErrorCode = 401
	ErrCodeStrategyConfigError   ErrorCode = 402

	// Backtest errors (600-699)
	ErrCodeInvariantViolation   ErrorCode = 600
	ErrCodeBacktestCancelled    ErrorCode = 601
	ErrCodeBacktestNoStrategies ErrorCode = 602
)
