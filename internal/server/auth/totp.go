package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "fileshare"

// One period of clock skew is accepted in each direction.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewTOTPSecret provisions a fresh base32 secret for the account, suitable
// for enrollment in an authenticator app.
func NewTOTPSecret(account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
		SecretSize:  20,
	})
	if err != nil {
		return "", fmt.Errorf("generating totp secret: %w", err)
	}
	return key.Secret(), nil
}

// GenerateCode returns the code for a base32 secret at the given time.
func GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCode(secret, at)
}

// ValidateCode checks a submitted code against the secret, accepting one
// period of skew either side of now.
func ValidateCode(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totpOpts)
	return err == nil && ok
}
