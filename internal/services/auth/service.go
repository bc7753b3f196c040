package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gamestore/internal/dependencies/clock"
	"github.com/mcoot/gamestore/internal/dependencies/random"
	"github.com/mcoot/gamestore/internal/model"
	mailer "github.com/mcoot/gamestore/internal/services/mail"
	"github.com/mcoot/gamestore/internal/storage"
)

// ErrInvalidSession is returned for unknown, expired or logged-out tokens
var ErrInvalidSession = errors.New("invalid or expired session")

const (
	maxNameLength  = 150
	maxEmailLength = 254
	tokenBytes     = 32
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Service handles registration, activation, login and session management
type Service struct {
	storage  storage.Storage
	sessions storage.SessionStore
	clock    clock.Clock
	random   random.Random
	mail     mailer.Sender
	logger   *slog.Logger

	sessionDuration time.Duration
	baseURL         string
	mailFrom        string
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration

	// BaseURL prefixes the activation link in verification mails
	BaseURL string

	// MailFrom is the sender address. It also receives a copy of every verification mail.
	MailFrom string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BaseURL:         "http://localhost:8080",
		MailFrom:        "gamestore@localhost",
	}
}

// Dependencies groups the collaborators of the auth service
type Dependencies struct {
	Storage  storage.Storage
	Sessions storage.SessionStore
	Clock    clock.Clock
	Random   random.Random
	Mail     mailer.Sender
	Logger   *slog.Logger
}

// New creates a new auth service
func New(deps Dependencies, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         deps.Storage,
		sessions:        deps.Sessions,
		clock:           deps.Clock,
		random:          deps.Random,
		mail:            deps.Mail,
		logger:          deps.Logger,
		sessionDuration: cfg.SessionDuration,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		mailFrom:        cfg.MailFrom,
	}
}

// RegisterInput is the registration form
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
	Email           string
	FirstName       string
	LastName        string
	Role            model.Role
}

// Validate checks the form fields
func (in RegisterInput) Validate() error {
	verr := &model.ValidationError{}

	switch {
	case in.Username == "":
		verr.Add("username", "This field is required.")
	case len(in.Username) > maxNameLength:
		verr.Add("username", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	case !usernamePattern.MatchString(in.Username):
		verr.Add("username", "Enter a valid username. Only letters, numbers and @/./+/-/_ are allowed.")
	}

	if in.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if in.PasswordConfirm == "" {
		verr.Add("password_check", "This field is required.")
	} else if in.Password != in.PasswordConfirm {
		verr.Add("password_check", "Passwords must match!")
	}

	if !validEmail(in.Email) {
		verr.Add("email", "Enter a valid email address.")
	}
	if len(in.FirstName) > maxNameLength {
		verr.Add("first_name", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	}
	if len(in.LastName) > maxNameLength {
		verr.Add("last_name", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	}
	if !in.Role.Valid() {
		verr.Add("account_type", "Select a valid choice.")
	}

	return verr.OrNil()
}

func validEmail(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms such as "Alice <a@example.com>"
	return addr.Address == s && strings.Contains(s, "@")
}

// VerificationHash derives the activation hash for a username
func VerificationHash(username string) string {
	sum := md5.Sum([]byte(username))
	return hex.EncodeToString(sum[:])
}

// ActivationLink returns the URL mailed to a new account
func (s *Service) ActivationLink(hash string) string {
	return fmt.Sprintf("%s/register/activate/%s/", s.baseURL, hash)
}

// Register creates an inactive account and mails its activation link
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, err := s.storage.GetAccountByUsername(ctx, in.Username)
	if err == nil {
		return nil, model.ErrDuplicateUsername
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &model.Account{
		Username:         in.Username,
		PasswordHash:     string(hash),
		Email:            in.Email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Role:             in.Role,
		VerificationHash: VerificationHash(in.Username),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID,
		"username", account.Username,
		"role", account.Role,
	)

	// The account exists either way; a failed mail is logged, not returned
	if err := s.mail.Send(ctx, s.verificationMail(account)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification mail",
			"account_id", account.ID,
			"error", err,
		)
	}

	return account, nil
}

func (s *Service) verificationMail(account *model.Account) mailer.Message {
	body := fmt.Sprintf("Welcome to the GameStore service, %s! \n"+
		"Here is your email validation link to activate your account. "+
		"Visit the link to be able to log in to your account and play the awesome games "+
		"and compete with other players! \n\n%s",
		account.Username, s.ActivationLink(account.VerificationHash))

	return mailer.Message{
		From:    s.mailFrom,
		To:      []string{s.mailFrom, account.Email},
		Subject: "Verification code",
		Body:    body,
	}
}

// Activate consumes a verification hash.
// Returns model.ErrAlreadyActivated if the account was already active.
func (s *Service) Activate(ctx context.Context, hash string) error {
	account, err := s.storage.GetAccountByVerificationHash(ctx, hash)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return model.ErrInvalidActivationHash
		}
		return err
	}

	if err := s.storage.ActivateAccount(ctx, account.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account activated", "account_id", account.ID)
	return nil
}

// Login checks credentials and starts a session
func (s *Service) Login(ctx context.Context, username, password string) (*model.Session, error) {
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !account.Activated {
		return nil, model.ErrNotActivated
	}

	return s.createSession(ctx, account)
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if session.Expired(s.clock.Now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session (logout)
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// CurrentAccount returns the account behind a session token
func (s *Service) CurrentAccount(ctx context.Context, token string) (*model.Account, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.storage.GetAccount(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return account, nil
}

// EditName updates the caller's first and last name
func (s *Service) EditName(ctx context.Context, caller *model.Account, firstName, lastName string) (*model.Account, error) {
	if caller == nil {
		return nil, model.ErrForbidden
	}

	verr := &model.ValidationError{}
	if len(firstName) > maxNameLength {
		verr.Add("first_name", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	}
	if len(lastName) > maxNameLength {
		verr.Add("last_name", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated := *caller
	updated.FirstName = firstName
	updated.LastName = lastName
	updated.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateAccount(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ChangePassword replaces the caller's password. The current session stays valid.
func (s *Service) ChangePassword(ctx context.Context, caller *model.Account, oldPassword, newPassword, confirm string) error {
	if caller == nil {
		return model.ErrForbidden
	}

	verr := &model.ValidationError{}
	if oldPassword == "" {
		verr.Add("old_password", "This field is required.")
	} else if bcrypt.CompareHashAndPassword([]byte(caller.PasswordHash), []byte(oldPassword)) != nil {
		verr.Add("old_password", "Your old password was entered incorrectly.")
	}
	if newPassword == "" {
		verr.Add("password", "This field is required.")
	}
	if newPassword != confirm {
		verr.Add("password_check", "Passwords must match!")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	updated := *caller
	updated.PasswordHash = string(hash)
	updated.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateAccount(ctx, &updated); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", "account_id", caller.ID)
	return nil
}

// createSession creates a new session for an account
func (s *Service) createSession(ctx context.Context, account *model.Account) (*model.Session, error) {
	now := s.clock.Now()
	session := &model.Session{
		Token:     s.random.Token(tokenBytes),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
