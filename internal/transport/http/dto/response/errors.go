package response

// Готовые ответы об ошибках. Значения не изменяются: детали добавляются
// через ErrorResponseWithDetails.
var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status:  "error",
		Error:   "authentication_failed",
		Details: "Invalid email or password",
	}

	ErrNotLoggedIn = ErrorResponse{
		Status:  "error",
		Error:   "unauthorized",
		Details: "You are not logged in",
	}

	ErrSessionExpired = ErrorResponse{
		Status:  "error",
		Error:   "session_expired",
		Details: "Session expired, please log in again",
	}

	ErrForbidden = ErrorResponse{
		Status:  "error",
		Error:   "forbidden",
		Details: "Admin access required",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
