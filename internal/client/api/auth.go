package api

import "context"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. When the account has a second
// factor enabled and otpCode is empty or wrong, the returned error matches
// ErrSecondFactorRequired and the caller should retry with a code.
func (c *Client) Login(ctx context.Context, username, password, otpCode string) (*LoginResult, error) {
	var res LoginResult
	err := c.doJSON(ctx, "POST", loginPath, loginRequest{Username: username, Password: password, OTPCode: otpCode}, &res, "Login failed")
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account. It does not authenticate; a successful result
// with a non-nil User is the signal to follow up with Login.
func (c *Client) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	var res RegisterResult
	err := c.doJSON(ctx, "POST", registerPath, registerRequest{Username: username, Email: email, Password: password}, &res, "Registration failed")
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate asks the server whether the current token is good and returns the
// token's user.
func (c *Client) Validate(ctx context.Context) (*User, error) {
	var res struct {
		User User `json:"user"`
	}
	if err := c.doJSON(ctx, "GET", validatePath, nil, &res, "Invalid token"); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// EnableOTP turns on the second factor for the current account and returns
// the shared secret to load into an authenticator.
func (c *Client) EnableOTP(ctx context.Context) (string, error) {
	var res struct {
		Secret string `json:"secret"`
	}
	if err := c.doJSON(ctx, "POST", otpPath, nil, &res, "Failed to enable second factor"); err != nil {
		return "", err
	}
	return res.Secret, nil
}
