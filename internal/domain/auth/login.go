package auth

import "github.com/pquerna/otp/totp"

// VerifyLogin checks a stored credential set against a login attempt.
// Disabled accounts fail the same way as a wrong password so the response
// does not leak account state.
func VerifyLogin(creds Credentials, password, mfaCode string) error {
	if creds.User.Status != UserStatusActive {
		return ErrInvalidCredentials
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	if creds.User.MFAEnabled {
		if mfaCode == "" {
			return ErrMFARequired
		}
		if creds.MFASecret == "" || !totp.Validate(mfaCode, creds.MFASecret) {
			return ErrInvalidMFACode
		}
	}
	return nil
}
