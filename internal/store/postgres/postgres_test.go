package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawbazaar/backend/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestLoadBlob(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT blob`)).
		WithArgs("rawbazaar:snapshot").
		WillReturnRows(sqlmock.NewRows([]string{"blob"}).AddRow([]byte(`{"version":1}`)))

	blob, err := s.LoadBlob(context.Background(), "rawbazaar:snapshot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(blob))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBlobMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT blob`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.LoadBlob(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBlobUpserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO store_snapshots`)).
		WithArgs("rawbazaar:snapshot", []byte(`{"version":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveBlob(context.Background(), "rawbazaar:snapshot", []byte(`{"version":1}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBlobRejectsInvalidInput(t *testing.T) {
	s, mock := newMockStore(t)

	assert.ErrorIs(t, s.SaveBlob(context.Background(), "", []byte("{}")), store.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveBlob(context.Background(), "k", nil), store.ErrInvalidInput)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO store_snapshots`)).
		WillReturnError(&pgconn.PgError{Code: "22P02"})
	assert.ErrorIs(t, s.SaveBlob(context.Background(), "k", []byte("not json")), store.ErrInvalidInput)

	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO store_snapshots`)).
		WillReturnError(boom)
	assert.ErrorIs(t, s.SaveBlob(context.Background(), "k", []byte("{}")), boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
