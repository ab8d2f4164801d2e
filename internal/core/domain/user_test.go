package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCredentialKey(t *testing.T) {
	if got := CredentialKey("alice"); got != "user:alice" {
		t.Errorf("expected user:alice, got %s", got)
	}
}

func TestCredentialRecordToPublic(t *testing.T) {
	record := &CredentialRecord{
		Username:       "alice",
		FullName:       strPtr("Alice Liddell"),
		Disabled:       boolPtr(false),
		HashedPassword: "$2a$04$secret-hash",
	}

	public := record.ToPublic()

	if public.Username != record.Username {
		t.Errorf("expected Username %s, got %s", record.Username, public.Username)
	}
	if public.FullName == nil || *public.FullName != "Alice Liddell" {
		t.Errorf("expected FullName to be carried over, got %v", public.FullName)
	}
	if public.Disabled == nil || *public.Disabled {
		t.Errorf("expected Disabled=false, got %v", public.Disabled)
	}

	data, err := json.Marshal(public)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["hashed_password"]; ok {
		t.Error("public view must not carry the password hash")
	}
}

func TestCredentialRecordIsDisabled(t *testing.T) {
	tests := []struct {
		name     string
		disabled *bool
		expected bool
	}{
		{"unset", nil, false},
		{"false", boolPtr(false), false},
		{"true", boolPtr(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CredentialRecord{Username: "alice", Disabled: tt.disabled}
			if r.IsDisabled() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, r.IsDisabled())
			}
		})
	}
}

func TestCredentialRecordPersistedForm(t *testing.T) {
	record := CredentialRecord{Username: "alice", HashedPassword: "h"}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	expected := `{"username":"alice","full_name":null,"disabled":null,"hashed_password":"h"}`
	if string(data) != expected {
		t.Errorf("expected %s, got %s", expected, data)
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Username: "alice", Password: "secret123"}, false},
		{"empty username", RegisterRequest{Password: "secret123"}, true},
		{"blank username", RegisterRequest{Username: "  ", Password: "secret123"}, true},
		{"empty password", RegisterRequest{Username: "alice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && err != ErrInvalidInput {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDecodeCredentialRecord(t *testing.T) {
	record, err := DecodeCredentialRecord("alice", []byte(`{"username":"alice","full_name":null,"disabled":null,"hashed_password":"h"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Username != "alice" || record.HashedPassword != "h" {
		t.Errorf("unexpected record %+v", record)
	}

	for _, data := range []string{`null`, `{}`, `{"username":"mallory"}`, `[1,2]`} {
		if _, err := DecodeCredentialRecord("alice", []byte(data)); !errors.Is(err, ErrCorruptCredential) {
			t.Errorf("%s: expected ErrCorruptCredential, got %v", data, err)
		}
	}
}
