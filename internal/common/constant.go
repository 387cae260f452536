package common

// BearerPrefix is the scheme prefix carried in the Authorization header on
// every protected request.
const BearerPrefix = "Bearer "

// EncryptionKeyHeader carries the unwrapped per-file data key on
// authenticated download responses.
const EncryptionKeyHeader = "X-Encryption-Key"

// TokenNotValidCode is the machine-readable code the server attaches to
// error responses caused by an invalid or expired access token. The client
// treats it the same as a bare 401.
const TokenNotValidCode = "token_not_valid"

// OTPRequiredCode marks a login rejection that only lacks the one-time code.
const OTPRequiredCode = "otp_required"
