package factory

import (
	"context"
	"time"

	"github.com/mcoot/gamestore/internal/dependencies/mocks"
	"github.com/mcoot/gamestore/internal/metrics"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/storage/memory"
	"github.com/mcoot/gamestore/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockMailer *mocks.MockMailer
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockMailer := mocks.NewMockMailer()

	app := newWithDependencies(dependencies{
		storage:  memory.New(),
		sessions: memory.NewSessionStore(),
		clock:    mockClock,
		random:   mockRandom,
		mail:     mockMailer,
		metrics:  metrics.New(),
		logger:   testutil.NopLogger(),
	}, Config{})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockMailer: mockMailer,
	}
}

// CreateActiveAccount registers and activates an account, returning it and a session token
func (t *TestApp) CreateActiveAccount(ctx context.Context, username, password string, role model.Role) (*model.Account, string, error) {
	account, err := t.AuthService.Register(ctx, auth.RegisterInput{
		Username:        username,
		Password:        password,
		PasswordConfirm: password,
		Email:           username + "@example.com",
		FirstName:       username,
		Role:            role,
	})
	if err != nil {
		return nil, "", err
	}
	if err := t.AuthService.Activate(ctx, account.VerificationHash); err != nil {
		return nil, "", err
	}
	session, err := t.AuthService.Login(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	account, err = t.Storage.GetAccount(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, session.Token, nil
}
