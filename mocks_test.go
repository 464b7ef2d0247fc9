package bookly_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/bookly"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUsers overrides only the methods the flows under test touch; the
// embedded interface covers the rest of the repository surface.
type MockUsers struct {
	bookly.Users
	mock.Mock
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*bookly.User, error) {
	args := m.Called(ctx, identifier)
	if u := args.Get(0); u != nil {
		return u.(*bookly.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*bookly.User, error) {
	args := m.Called(ctx, tx, identifier)
	if u := args.Get(0); u != nil {
		return u.(*bookly.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *bookly.User, criteria ...repository.InsertCriteria) (*bookly.User, error) {
	args := m.Called(ctx, tx, record)
	if u := args.Get(0); u != nil {
		return u.(*bookly.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) MarkEmailVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *bookly.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSucccessfulLogin(ctx context.Context, user *bookly.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx executes the transaction body against a zero bun.Tx so errors
// raised inside the closure propagate the way the real manager does.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Users() bookly.Users {
	args := m.Called()
	return args.Get(0).(bookly.Users)
}

func (m *MockRepositoryManager) Books() bookly.Books {
	args := m.Called()
	return args.Get(0).(bookly.Books)
}

func (m *MockRepositoryManager) Reviews() bookly.Reviews {
	args := m.Called()
	return args.Get(0).(bookly.Reviews)
}

// mailRecorder collects enqueued messages for assertions.
type mailRecorder struct {
	to       []string
	subjects []string
	bodies   []string
}

func (m *mailRecorder) Enqueue(to, subject, html string) error {
	m.to = append(m.to, to)
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, html)
	return nil
}
