package mocks

import (
	"context"
	"database/sql"

	"transfer/pkg/db"

	"github.com/stretchr/testify/mock"
)

// MockSQLExecutor is a mock implementation of db.SQLExecutor
type MockSQLExecutor struct {
	mock.Mock
}

func (m *MockSQLExecutor) WithTransaction(ctx context.Context, opts *sql.TxOptions, fn db.TxFunc) error {
	args := m.Called(ctx, opts, fn)
	return args.Error(0)
}

func (m *MockSQLExecutor) ExecContext(ctx context.Context, query string, queryArgs ...any) (sql.Result, error) {
	args := m.Called(ctx, query, queryArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sql.Result), args.Error(1)
}

func (m *MockSQLExecutor) QueryContext(ctx context.Context, query string, queryArgs ...any) (*sql.Rows, error) {
	args := m.Called(ctx, query, queryArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sql.Rows), args.Error(1)
}
