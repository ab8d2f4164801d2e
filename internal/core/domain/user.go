package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CredentialKeyPrefix namespaces credential records in key-value stores
const CredentialKeyPrefix = "user:"

// CredentialKey returns the store key for a username
func CredentialKey(username string) string {
	return CredentialKeyPrefix + username
}

// DecodeCredentialRecord parses a stored record and checks that it belongs to
// the username whose key it was read from. A null value or a record naming
// another user is ErrCorruptCredential.
func DecodeCredentialRecord(username string, data []byte) (*CredentialRecord, error) {
	var record CredentialRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCorruptCredential, CredentialKey(username), err)
	}
	if record.Username != username {
		return nil, fmt.Errorf("%w: %s holds a record for %q", ErrCorruptCredential, CredentialKey(username), record.Username)
	}
	return &record, nil
}

// CredentialRecord is the persisted unit mapping a username to its
// password hash and profile flags.
type CredentialRecord struct {
	Username       string  `json:"username"`
	FullName       *string `json:"full_name"`
	Disabled       *bool   `json:"disabled"`
	HashedPassword string  `json:"hashed_password"`
}

// IsDisabled reports whether the account has been deactivated.
// A missing flag means active.
func (r *CredentialRecord) IsDisabled() bool {
	return r.Disabled != nil && *r.Disabled
}

// ToPublic strips the password hash
func (r *CredentialRecord) ToPublic() *PublicUser {
	return &PublicUser{
		Username: r.Username,
		FullName: r.FullName,
		Disabled: r.Disabled,
	}
}

// PublicUser is a credential record safe to return to clients
type PublicUser struct {
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
	Disabled *bool   `json:"disabled"`
}

// RegisterRequest represents a registration attempt
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// Validate checks required fields
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return ErrInvalidInput
	}
	return nil
}
