package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Auth & session errors
// 12000-12999: Local validation errors
// 13000-13999: Device capability errors
// 14000-14999: Transport & server errors
// 15000-15999: Complaint & notification errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	ServiceUnavailable  ErrorCode = 10007

	// Storage errors (10100-10199)
	StorageError        ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102

	// ========== Auth & Session Errors (11000-11999) ==========

	InvalidCredentials    ErrorCode = 11000
	UserNotFound          ErrorCode = 11001
	TokenExpired          ErrorCode = 11003
	TokenInvalid          ErrorCode = 11004
	TokenGenerationFailed ErrorCode = 11005
	SessionMissing        ErrorCode = 11006
	MobileAlreadyExists   ErrorCode = 11100
	EmailAlreadyExists    ErrorCode = 11101
	InvalidOTP            ErrorCode = 11102

	// ========== Validation Errors (12000-12999) ==========

	ValidationFailed    ErrorCode = 12000
	RequiredFieldEmpty  ErrorCode = 12001
	PasswordMismatch    ErrorCode = 12002
	InvalidMobileNumber ErrorCode = 12003
	DescriptionRequired ErrorCode = 12004
	LocationRequired    ErrorCode = 12005
	InvalidFormat       ErrorCode = 12006

	// ========== Device Capability Errors (13000-13999) ==========

	PermissionDenied    ErrorCode = 13000
	ServicesDisabled    ErrorCode = 13001
	LocationUnavailable ErrorCode = 13002
	PhotoUnreadable     ErrorCode = 13003

	// ========== Transport & Server Errors (14000-14999) ==========

	TransportFailed ErrorCode = 14000
	ServerRejected  ErrorCode = 14001
	InvalidResponse ErrorCode = 14002

	// ========== Complaint & Notification Errors (15000-15999) ==========

	ComplaintNotFound     ErrorCode = 15000
	NotificationNotFound  ErrorCode = 15001
	PhotoUploadFailed     ErrorCode = 15002
	InvalidComplaintState ErrorCode = 15003
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	ServiceUnavailable:  "Service temporarily unavailable",

	// Storage
	StorageError:        "Storage operation failed",
	RecordNotFound:      "Record not found",
	RecordAlreadyExists: "Record already exists",

	// Auth & session
	InvalidCredentials:    "Invalid mobile number or password",
	UserNotFound:          "User not found",
	TokenExpired:          "Token has expired",
	TokenInvalid:          "Invalid token",
	TokenGenerationFailed: "Failed to generate token",
	SessionMissing:        "Not logged in",
	MobileAlreadyExists:   "Mobile number already registered",
	EmailAlreadyExists:    "Email already registered",
	InvalidOTP:            "Invalid or expired OTP",

	// Validation
	ValidationFailed:    "Validation failed",
	RequiredFieldEmpty:  "Please fill in all fields",
	PasswordMismatch:    "Passwords do not match",
	InvalidMobileNumber: "Mobile number must be 10 digits",
	DescriptionRequired: "Please describe the complaint",
	LocationRequired:    "Location is required to submit a complaint",
	InvalidFormat:       "Invalid format",

	// Device
	PermissionDenied:    "Permission to access location was denied",
	ServicesDisabled:    "Location services are disabled",
	LocationUnavailable: "Current location is unavailable",
	PhotoUnreadable:     "Selected photo could not be read",

	// Transport & server
	TransportFailed: "Network request failed",
	ServerRejected:  "Request failed",
	InvalidResponse: "Unexpected response from server",

	// Complaints
	ComplaintNotFound:     "Complaint not found",
	NotificationNotFound:  "Notification not found",
	PhotoUploadFailed:     "Failed to store photo",
	InvalidComplaintState: "Invalid complaint status",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == Unauthorized, c == TokenExpired, c == TokenInvalid, c == InvalidCredentials, c == SessionMissing:
		return 401
	case c == Forbidden, c == PermissionDenied:
		return 403
	case c == NotFound, c == UserNotFound, c == RecordNotFound, c == ComplaintNotFound, c == NotificationNotFound:
		return 404
	case c == MobileAlreadyExists, c == EmailAlreadyExists, c == RecordAlreadyExists:
		return 409
	case c == ServiceUnavailable:
		return 503
	case c >= 12000 && c < 13000: // Validation errors
		return 400
	case c == InvalidParams, c == InvalidOTP, c == InvalidComplaintState:
		return 400
	default:
		return 500
	}
}

// IsValidation reports whether the code belongs to the local validation range.
func (c ErrorCode) IsValidation() bool {
	return c >= 12000 && c < 13000
}

// IsDevice reports whether the code belongs to the device capability range.
func (c ErrorCode) IsDevice() bool {
	return c >= 13000 && c < 14000
}
