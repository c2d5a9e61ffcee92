package database

import (
    "context"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/jmoiron/sqlx"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
    t.Helper()
    raw, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { raw.Close() })
    return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestWithTxCommits(t *testing.T) {
    db, mock := newMockDB(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE profiles").WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
        _, err := tx.ExecContext(context.Background(), "UPDATE profiles SET age = 30")
        return err
    })

    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
    db, mock := newMockDB(t)
    mock.ExpectBegin()
    mock.ExpectRollback()

    boom := errors.New("boom")
    err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
        return boom
    })

    assert.ErrorIs(t, err, boom)
    assert.NoError(t, mock.ExpectationsWereMet())
}
