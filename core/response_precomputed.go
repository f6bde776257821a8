package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkRegistered             = "ok_registered"
	CodeOkLogout                 = "ok_logout"
	CodeOkPasswordReset          = "ok_password_reset"
	CodeOkPasswordResetRequested = "ok_password_reset_requested"
	CodeOkVerificationRequested  = "ok_verification_requested"
	CodeOkEmailVerified          = "ok_email_verified"
	CodeOkAlreadyVerified        = "ok_already_verified"
	CodeOkConversationDeleted    = "ok_conversation_deleted"
	CodeOkUserDeleted            = "ok_user_deleted"

	// errors
	CodeErrorInvalidRequest      = "err_invalid_input"
	CodeErrorMissingFields       = "err_missing_fields"
	CodeErrorInvalidContentType  = "err_invalid_content_type"
	CodeErrorInvalidCredentials  = "err_invalid_credentials"
	CodeErrorAccountDisabled     = "err_account_disabled"
	CodeErrorDuplicateEmail      = "err_duplicate_email"
	CodeErrorWeakPassword        = "err_weak_password"
	CodeErrorForbidden           = "err_forbidden"
	CodeErrorUnauthorized        = "err_unauthorized"
	CodeErrorNotFound            = "err_not_found"
	CodeErrorInvalidToken        = "err_invalid_token"
	CodeErrorExpiredToken        = "err_expired_token"
	CodeErrorUpstreamProvider    = "err_upstream_provider"
	CodeErrorInternal            = "err_internal"
	CodeErrorTooManyRequests     = "err_too_many_requests"
	CodeErrorSelfModification    = "err_self_modification"
	CodeErrorServiceUnavailable  = "err_service_unavailable"
)

// precomputeBasicResponse builds the full JSON body once during package
// initialization. Handlers then write the stored bytes directly, which
// avoids repeated marshaling during request handling.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorInvalidRequest     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorMissingFields      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorInvalidContentType = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorInvalidCredentials = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorAccountDisabled    = precomputeBasicResponse(http.StatusForbidden, CodeErrorAccountDisabled, "Account has been disabled")
	errorDuplicateEmail     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorDuplicateEmail, "Email address is already registered")
	errorWeakPassword       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorWeakPassword, "Password must be at least 8 characters")
	errorForbidden          = precomputeBasicResponse(http.StatusForbidden, CodeErrorForbidden, "You do not have permission to perform this action")
	errorUnauthorized       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorUnauthorized, "Authentication required")
	errorNotFound           = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorInvalidToken       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidToken, "Invalid or already used token")
	errorExpiredToken       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorExpiredToken, "Token has expired")
	errorUpstreamProvider   = precomputeBasicResponse(http.StatusBadGateway, CodeErrorUpstreamProvider, "Upstream provider request failed")
	errorInternal           = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorInternal, "An unexpected error occurred")
	errorTooManyRequests    = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyRequests, "Too many requests, please try again later")
	errorSelfModification   = precomputeBasicResponse(http.StatusBadRequest, CodeErrorSelfModification, "Admins cannot modify their own account")
	errorServiceUnavailable = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")

	// oks
	okLogout                 = precomputeBasicResponse(http.StatusOK, CodeOkLogout, "Logged out successfully")
	okPasswordReset          = precomputeBasicResponse(http.StatusOK, CodeOkPasswordReset, "Password reset successfully")
	okPasswordResetRequested = precomputeBasicResponse(http.StatusOK, CodeOkPasswordResetRequested, "Password reset instructions will be sent to your email if it exists in our system")
	okVerificationRequested  = precomputeBasicResponse(http.StatusOK, CodeOkVerificationRequested, "Verification instructions will be sent to your email if it exists in our system")
	okEmailVerified          = precomputeBasicResponse(http.StatusOK, CodeOkEmailVerified, "Email verified successfully")
	okAlreadyVerified        = precomputeBasicResponse(http.StatusOK, CodeOkAlreadyVerified, "Email already verified - no further action needed")
	okConversationDeleted    = precomputeBasicResponse(http.StatusOK, CodeOkConversationDeleted, "Conversation deleted")
	okUserDeleted            = precomputeBasicResponse(http.StatusOK, CodeOkUserDeleted, "User deleted")
)
