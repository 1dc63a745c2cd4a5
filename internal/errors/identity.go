package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Identity provider wire codes. These are the codes the hosted identity
// service returns in its error payloads; the dev provider emits the same
// codes so both paths exercise one mapping table.
const (
	ProviderInvalidCredential = "INVALID_LOGIN_CREDENTIALS"
	ProviderUserNotFound      = "EMAIL_NOT_FOUND"
	ProviderWrongPassword     = "INVALID_PASSWORD"
	ProviderEmailExists       = "EMAIL_EXISTS"
	ProviderWeakPassword      = "WEAK_PASSWORD"
	ProviderInvalidEmail      = "INVALID_EMAIL"
	ProviderTooManyRequests   = "TOO_MANY_ATTEMPTS_TRY_LATER"
)

// IdentityError carries a provider error code through the adapter
// boundary. It is mapped to a user-facing AppError by MapIdentityError;
// the raw code and payload never reach the UI.
type IdentityError struct {
	Code string
	Err  error
}

func (e *IdentityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity provider: %s: %v", e.Code, e.Err)
	}
	return "identity provider: " + e.Code
}

func (e *IdentityError) Unwrap() error { return e.Err }

// identityMessages is the fixed mapping from provider codes to the
// user-facing messages. No raw provider text reaches the UI.
var identityMessages = map[string]struct {
	code    ErrorCode
	message string
}{
	ProviderInvalidCredential: {ErrCodeCredential, "Invalid email or password. Please check your credentials."},
	ProviderUserNotFound:      {ErrCodeCredential, "No account found with this email."},
	ProviderWrongPassword:     {ErrCodeCredential, "Incorrect password."},
	ProviderEmailExists:       {ErrCodeConflict, "An account already exists with this email."},
	ProviderWeakPassword:      {ErrCodeValidation, "Password should be at least 6 characters."},
	ProviderInvalidEmail:      {ErrCodeValidation, "Please enter a valid email address."},
	ProviderTooManyRequests:   {ErrCodeRateLimit, "Too many failed attempts. Please try again later."},
}

// MapIdentityError maps identity-provider errors to AppError instances
// with fixed user-facing messages. Transport failures map to a network
// error; anything unrecognized maps to a generic message.
func MapIdentityError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}

	var idErr *IdentityError
	if errors.As(err, &idErr) {
		if m, ok := identityMessages[idErr.Code]; ok {
			return &AppError{Code: m.code, Message: m.message, Cause: err}
		}
		return &AppError{Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &AppError{Code: ErrCodeNetwork, Message: "Network error. Please check your internet connection.", Cause: err}
	}

	// Already mapped errors pass through unchanged.
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	return &AppError{Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.", Cause: err}
}
