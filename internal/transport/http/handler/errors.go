package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errEmailRequired      = "Email is required"
	errCredentialsMissing = "Email and password are required"
	errPasswordTooShort   = "Password must be at least 8 characters"
	errUnauthorized       = "Unauthorized"
	errTaskNotFound       = "Task not found"
	errScheduleNotFound   = "Schedule not found"
	errScheduleTaken      = "This slot can no longer be reserved"
	errScheduleIDRequired = "Schedule ID is required"
	errInvalidSubmission  = "Submission needs a name and an http(s) URL"
	errInvalidFilter      = "year and month must be numbers"
)
