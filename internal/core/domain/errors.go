package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates no credential record exists for the username
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a credential record already exists for the username
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrBadCredentials indicates the password does not match the stored hash
	ErrBadCredentials = errors.New("bad credentials")

	// ErrCorruptCredential indicates a stored record or digest cannot be decoded
	ErrCorruptCredential = errors.New("corrupt credential")

	// ErrMalformedToken indicates the token cannot be parsed or its signature is invalid
	ErrMalformedToken = errors.New("malformed token")

	// ErrClaimMismatch indicates the token issuer or audience is not ours
	ErrClaimMismatch = errors.New("claim mismatch")

	// ErrExpired indicates the token is past its expiry
	ErrExpired = errors.New("token expired")

	// ErrUnauthorized indicates the token subject no longer resolves
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInactiveAccount indicates the account is disabled
	ErrInactiveAccount = errors.New("inactive account")

	// ErrStoreUnavailable indicates the credential store could not be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrStoreUnavailable, "store_unavailable"},
	{ErrAlreadyExists, "already_exists"},
	{ErrNotFound, "not_found"},
	{ErrInvalidInput, "invalid_input"},
	{ErrBadCredentials, "bad_credentials"},
	{ErrCorruptCredential, "corrupt_credential"},
	{ErrMalformedToken, "malformed_token"},
	{ErrClaimMismatch, "claim_mismatch"},
	{ErrExpired, "expired"},
	{ErrUnauthorized, "unauthorized"},
	{ErrInactiveAccount, "inactive_account"},
}

// ErrorKind returns a stable label for err, suitable for logs and span
// attributes. Store failures win over anything they wrap.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
