package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrResourceNotFound = ErrorResponse{
		Status:  "error",
		Error:   "resource_not_found",
		Details: "Unknown resource",
	}

	ErrRowNotFound = ErrorResponse{
		Status:  "error",
		Error:   "not_found",
		Details: "No matching row",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status:  "error",
		Error:   "authentication_failed",
		Details: "Invalid credentials",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
