// Package errors provides the structured error type returned by every
// foremit package.
//
// Errors fall into three groups:
//
//   - configuration errors ([ErrCodeInvalidSource], [ErrCodeSourceEnded],
//     [ErrCodeInvalidOption]) are returned synchronously when a sequence is built;
//   - producer errors ([ErrCodeProducer]) wrap whatever the source emitted on
//     its error event and surface on the next pull;
//   - timeout errors ([ErrCodeTimeout]) surface on the pull that detected
//     the elapsed deadline.
//
// Item conversion failures ([ErrCodeInvalidItem], [ErrCodeTransformFailed])
// also surface on the pull. Every failure is terminal for its sequence;
// nothing in this module retries.
package errors
