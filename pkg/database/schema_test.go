package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestEnsureSchemaCommits(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := EnsureSchema(context.Background(), db, Schema{Name: "test", Statements: []string{
		"CREATE TABLE IF NOT EXISTS a (id INT)",
		"CREATE TABLE IF NOT EXISTS b (id INT)",
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaRollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS a").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := EnsureSchema(context.Background(), db, Schema{Name: "test", Statements: []string{
		"CREATE TABLE IF NOT EXISTS a (id INT)",
		"CREATE TABLE IF NOT EXISTS b (id INT)",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxPropagatesCallbackError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
