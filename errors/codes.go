package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeInvalidSource indicates the value given as a source cannot emit events.
	ErrCodeInvalidSource ErrorCode = "INVALID_SOURCE"
	// ErrCodeSourceEnded indicates the source finished before it was wrapped.
	ErrCodeSourceEnded ErrorCode = "SOURCE_ENDED"
	// ErrCodeInvalidOption indicates an option failed validation.
	ErrCodeInvalidOption ErrorCode = "INVALID_OPTION"
)

// Runtime errors
const (
	// ErrCodeProducer indicates the source emitted on its error event.
	ErrCodeProducer ErrorCode = "PRODUCER_ERROR"
	// ErrCodeTimeout indicates no event arrived within the active deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidItem indicates a payload could not be converted to the item type.
	ErrCodeInvalidItem ErrorCode = "INVALID_ITEM"
	// ErrCodeTransformFailed indicates the transform returned an error.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
)

var configurationCodes = map[ErrorCode]bool{
	ErrCodeInvalidSource: true,
	ErrCodeSourceEnded:   true,
	ErrCodeInvalidOption: true,
}

// IsConfigurationCode returns true for codes reported while building a sequence.
func IsConfigurationCode(code ErrorCode) bool {
	return configurationCodes[code]
}
