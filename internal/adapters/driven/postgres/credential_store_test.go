package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

func newMockStore(t *testing.T) (*CredentialStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewCredentialStore(New(sqlDB)), mock
}

func TestCredentialStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM credentials WHERE key = $1`)).
		WithArgs("user:alice").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow([]byte(`{"username":"alice","full_name":"Alice","disabled":false,"hashed_password":"digest"}`)))

	record, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Username)
	assert.Equal(t, "digest", record.HashedPassword)
	require.NotNil(t, record.FullName)
	assert.Equal(t, "Alice", *record.FullName)
	assert.False(t, record.IsDisabled())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM credentials WHERE key = $1`)).
		WithArgs("user:nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "nobody")
	assert.Equal(t, domain.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Get_Corrupt(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM credentials WHERE key = $1`)).
		WithArgs("user:alice").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`"just a string"`)))

	_, err := store.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrCorruptCredential)
}

func TestCredentialStore_Get_RecordMustMatchKey(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"null value", `null`},
		{"empty object", `{}`},
		{"other username", `{"username":"mallory","full_name":null,"disabled":false,"hashed_password":"h"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM credentials WHERE key = $1`)).
				WithArgs("user:bob").
				WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(tt.value)))

			record, err := store.Get(context.Background(), "bob")
			assert.ErrorIs(t, err, domain.ErrCorruptCredential)
			assert.Nil(t, record)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCredentialStore_Exists(t *testing.T) {
	store, mock := newMockStore(t)
	query := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM credentials WHERE key = $1)`)

	mock.ExpectQuery(query).WithArgs("user:alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("user:bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := store.Exists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Put(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO credentials \(key, value, updated_at\)`).
		WithArgs("user:alice", []byte(`{"username":"alice","full_name":null,"disabled":null,"hashed_password":"digest"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), "alice", &domain.CredentialRecord{
		Username:       "alice",
		HashedPassword: "digest",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM credentials WHERE key = $1`)).
		WithArgs("user:alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Unavailable(t *testing.T) {
	store, mock := newMockStore(t)
	backend := errors.New("connection refused")

	mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(backend)
	mock.ExpectQuery(`SELECT value`).WillReturnError(backend)
	mock.ExpectExec(`INSERT INTO credentials`).WillReturnError(backend)
	mock.ExpectExec(`DELETE FROM credentials`).WillReturnError(backend)
	mock.ExpectPing().WillReturnError(backend)

	ctx := context.Background()
	_, existsErr := store.Exists(ctx, "alice")
	_, getErr := store.Get(ctx, "alice")
	putErr := store.Put(ctx, "alice", &domain.CredentialRecord{Username: "alice"})
	deleteErr := store.Delete(ctx, "alice")
	pingErr := store.Ping(ctx)

	for _, err := range []error{existsErr, getErr, putErr, deleteErr, pingErr} {
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, backend)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_InitSchema(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS credentials`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, New(sqlDB).InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
