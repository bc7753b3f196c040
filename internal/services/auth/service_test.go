package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamestore/internal/dependencies/mocks"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage/memory"
	"github.com/mcoot/gamestore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	sessions *memory.SessionStore
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	mailer   *mocks.MockMailer
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.sessions = memory.NewSessionStore()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.mailer = mocks.NewMockMailer()

	cfg := DefaultConfig()
	cfg.BaseURL = "https://store.example.com/"
	cfg.MailFrom = "store@example.com"

	s.service = New(Dependencies{
		Storage:  s.storage,
		Sessions: s.sessions,
		Clock:    s.clock,
		Random:   s.random,
		Mail:     s.mailer,
		Logger:   testutil.NopLogger(),
	}, cfg)
	s.ctx = context.Background()
}

func validInput(username string, role model.Role) RegisterInput {
	return RegisterInput{
		Username:        username,
		Password:        "password123",
		PasswordConfirm: "password123",
		Email:           username + "@example.com",
		FirstName:       "Test",
		Role:            role,
	}
}

func (s *ServiceSuite) registerActive(username string, role model.Role) *model.Account {
	account, err := s.service.Register(s.ctx, validInput(username, role))
	s.Require().NoError(err)
	s.Require().NoError(s.service.Activate(s.ctx, account.VerificationHash))
	account.Activated = true
	return account
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesInactiveAccount() {
	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	s.NotZero(account.ID)
	s.False(account.Activated)
	s.Equal(model.RolePlayer, account.Role)
	s.NotEqual("password123", account.PasswordHash) // Should be hashed

	stored, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(stored.Activated)
}

func (s *ServiceSuite) TestRegisterUsesUsernameHash() {
	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	// md5("alice")
	s.Equal("6384e2b2184bcbf58eccf10ca7a6563c", account.VerificationHash)
}

func (s *ServiceSuite) TestRegisterSendsActivationMail() {
	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	msg, ok := s.mailer.Last()
	s.Require().True(ok)
	s.Equal("Verification code", msg.Subject)
	s.Equal([]string{"store@example.com", "alice@example.com"}, msg.To)
	s.Contains(msg.Body, "https://store.example.com/register/activate/"+account.VerificationHash+"/")
}

func (s *ServiceSuite) TestRegisterSurvivesMailFailure() {
	s.mailer.Err = errors.New("smtp down")

	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)
	s.NotZero(account.ID)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, validInput("alice", model.RoleDeveloper))
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *ServiceSuite) TestRegisterValidation() {
	cases := map[string]struct {
		mutate func(*RegisterInput)
		field  string
	}{
		"missing username":  {func(in *RegisterInput) { in.Username = "" }, "username"},
		"bad username":      {func(in *RegisterInput) { in.Username = "al ice" }, "username"},
		"missing password":  {func(in *RegisterInput) { in.Password = ""; in.PasswordConfirm = "" }, "password"},
		"password mismatch": {func(in *RegisterInput) { in.PasswordConfirm = "other" }, "password_check"},
		"bad email":         {func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		"display name mail": {func(in *RegisterInput) { in.Email = "Alice <alice@example.com>" }, "email"},
		"bad role":          {func(in *RegisterInput) { in.Role = "admin" }, "account_type"},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			in := validInput("alice", model.RolePlayer)
			tc.mutate(&in)

			_, err := s.service.Register(s.ctx, in)
			var verr *model.ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Contains(verr.Fields, tc.field)
		})
	}

	_, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Activate tests

func (s *ServiceSuite) TestActivateOnce() {
	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	s.Require().NoError(s.service.Activate(s.ctx, account.VerificationHash))
	s.ErrorIs(s.service.Activate(s.ctx, account.VerificationHash), model.ErrAlreadyActivated)

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.True(stored.Activated)
}

func (s *ServiceSuite) TestActivateWrongHashLeavesAccountInactive() {
	account, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	s.ErrorIs(s.service.Activate(s.ctx, "0000"), model.ErrInvalidActivationHash)

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.False(stored.Activated)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	account := s.registerActive("alice", model.RolePlayer)
	s.random.QueueToken("sess-1")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.Equal("sess-1", session.Token)
	s.Equal(account.ID, session.AccountID)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginInactive() {
	_, err := s.service.Register(s.ctx, validInput("alice", model.RolePlayer))
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "password123")
	s.ErrorIs(err, model.ErrNotActivated)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	s.registerActive("alice", model.RolePlayer)

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

// Session tests

func (s *ServiceSuite) TestCurrentAccount() {
	account := s.registerActive("alice", model.RolePlayer)
	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	current, err := s.service.CurrentAccount(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(account.ID, current.ID)
}

func (s *ServiceSuite) TestSessionExpires() {
	s.registerActive("alice", model.RolePlayer)
	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)

	_, err = s.service.ValidateSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogoutInvalidatesSession() {
	s.registerActive("alice", model.RolePlayer)
	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.Require().NoError(s.service.InvalidateSession(s.ctx, session.Token))

	_, err = s.service.CurrentAccount(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateEmptyToken() {
	_, err := s.service.ValidateSession(s.ctx, "")
	s.ErrorIs(err, ErrInvalidSession)
}

// Account edit tests

func (s *ServiceSuite) TestEditName() {
	account := s.registerActive("alice", model.RolePlayer)

	updated, err := s.service.EditName(s.ctx, account, "Alice", "Liddell")
	s.Require().NoError(err)
	s.Equal("Alice Liddell", updated.DisplayName())

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("Liddell", stored.LastName)
}

func (s *ServiceSuite) TestChangePassword() {
	account := s.registerActive("alice", model.RolePlayer)
	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.ChangePassword(s.ctx, stored, "password123", "newpass", "newpass"))

	_, err = s.service.Login(s.ctx, "alice", "password123")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	_, err = s.service.Login(s.ctx, "alice", "newpass")
	s.NoError(err)
}

func (s *ServiceSuite) TestChangePasswordRejectsWrongOldPassword() {
	account := s.registerActive("alice", model.RolePlayer)
	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)

	err = s.service.ChangePassword(s.ctx, stored, "wrong", "newpass", "newpass")
	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "old_password")
}

func (s *ServiceSuite) TestChangePasswordRejectsMismatch() {
	account := s.registerActive("alice", model.RolePlayer)
	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)

	err = s.service.ChangePassword(s.ctx, stored, "password123", "newpass", "other")
	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "password_check")
}
