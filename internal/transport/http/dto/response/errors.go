package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrInvalidRegisterRequest = ErrorResponse{
		Status:  "error",
		Error:   "invalid_register_request",
		Details: "Invalid registration data",
	}

	ErrUserAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "user_already_exists",
		Details: "User with this email already exists",
	}

	ErrProjectNotFound = ErrorResponse{
		Status:  "error",
		Error:   "project_not_found",
		Details: "No project matches the given id or code",
	}

	ErrForbidden = ErrorResponse{
		Status:  "error",
		Error:   "forbidden",
		Details: "Actor is not allowed to perform this action",
	}

	ErrCodeTaken = ErrorResponse{
		Status:  "error",
		Error:   "code_taken",
		Details: "Project code is already in use",
	}
)
