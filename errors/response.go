package errors

// ErrorResponse is the JSON structure sent to clients, following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}

// ResponseFor converts any error to an ErrorResponse. Errors that are not
// AppErrors are reported as producer errors.
func ResponseFor(err error) ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		return appErr.ToResponse()
	}
	return Producer("", err).ToResponse()
}
