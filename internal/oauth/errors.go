package oauth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Redirect query parameters
const (
	ParamVerificationCode = "verification_code"
	ParamSuccess          = "success"
	ParamError            = "error"

	errorBetaAccessRequired = "beta_access_required"
)

var (
	// ErrUserCancelled is returned when the user closes or denies the flow
	ErrUserCancelled = errors.New("sign-in was cancelled")

	// ErrBetaAccessRequired means the account exists but is not provisioned yet
	ErrBetaAccessRequired = errors.New("beta access required")

	// ErrSecurityValidation is returned for a redirect that fails validation
	ErrSecurityValidation = errors.New("security validation failed")

	// ErrSignInInProgress rejects a flow started while another is open
	ErrSignInInProgress = errors.New("sign-in already in progress")

	// ErrSignInFailed wraps every other interactive flow failure
	ErrSignInFailed = errors.New("sign-in failed")
)

// ValidateRedirect returns the credential carried by a successful redirect
func ValidateRedirect(redirect string) (string, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return "", ErrSecurityValidation
	}
	q := u.Query()

	if q.Get(ParamError) == errorBetaAccessRequired {
		return "", ErrBetaAccessRequired
	}

	code := q.Get(ParamVerificationCode)
	if code == "" || q.Get(ParamSuccess) != "true" {
		return "", ErrSecurityValidation
	}
	return code, nil
}

// classifyLaunchError maps an interactive flow failure onto the taxonomy
func classifyLaunchError(err error) error {
	if errors.Is(err, ErrUserCancelled) || errors.Is(err, ErrBetaAccessRequired) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "denied"), strings.Contains(msg, "cancelled"):
		return fmt.Errorf("%w: %v", ErrUserCancelled, err)
	case strings.Contains(msg, errorBetaAccessRequired):
		return fmt.Errorf("%w: %v", ErrBetaAccessRequired, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignInFailed, err)
	}
}

// Outcome names a sign-in result for metrics and logs
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUserCancelled):
		return "cancelled"
	case errors.Is(err, ErrBetaAccessRequired):
		return "beta_access_required"
	case errors.Is(err, ErrSecurityValidation):
		return "security_validation_failed"
	case errors.Is(err, ErrSignInInProgress):
		return "in_progress"
	default:
		return "failed"
	}
}
