package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func testCredentials(t *testing.T, password string) Credentials {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return Credentials{
		User:         User{ID: "user-1", Status: UserStatusActive},
		PasswordHash: hash,
	}
}

func TestVerifyLogin(t *testing.T) {
	creds := testCredentials(t, "Secret123")

	if err := VerifyLogin(creds, "Secret123", ""); err != nil {
		t.Fatalf("expected success: %v", err)
	}
	if err := VerifyLogin(creds, "WrongPass1", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}

	disabled := creds
	disabled.User.Status = UserStatusDisabled
	if err := VerifyLogin(disabled, "Secret123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("disabled account: got %v", err)
	}
}

func TestVerifyLoginMFA(t *testing.T) {
	creds := testCredentials(t, "Secret123")
	creds.User.MFAEnabled = true

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "ERM", AccountName: "user-1"})
	if err != nil {
		t.Fatalf("generate totp key: %v", err)
	}
	creds.MFASecret = key.Secret()

	if err := VerifyLogin(creds, "Secret123", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("missing code: got %v", err)
	}
	if err := VerifyLogin(creds, "Secret123", "000000"); !errors.Is(err, ErrInvalidMFACode) {
		t.Fatalf("bad code: got %v", err)
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := VerifyLogin(creds, "Secret123", code); err != nil {
		t.Fatalf("valid code: got %v", err)
	}

	// An enabled flag without a stored secret can never validate.
	creds.MFASecret = ""
	if err := VerifyLogin(creds, "Secret123", code); !errors.Is(err, ErrInvalidMFACode) {
		t.Fatalf("missing secret: got %v", err)
	}
}
