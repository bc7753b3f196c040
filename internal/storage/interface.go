package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/gamestore/internal/model"
)

// ErrSessionNotFound is returned by session stores for unknown or expired tokens
var ErrSessionNotFound = errors.New("session not found")

// Storage defines the interface for relational data persistence.
// Create methods assign the ID of the passed entity.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountByVerificationHash(ctx context.Context, hash string) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	// ActivateAccount flips Activated from false to true.
	// Returns model.ErrAlreadyActivated if it was already true.
	ActivateAccount(ctx context.Context, id model.AccountID) error

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameByName(ctx context.Context, name string) (*model.Game, error)
	UpdateGame(ctx context.Context, game *model.Game) error
	ListGames(ctx context.Context, filter model.GameFilter) ([]*model.Game, error)

	// Ownership operations
	OwnsGame(ctx context.Context, playerID model.AccountID, gameID model.GameID) (bool, error)
	ListOwnedGames(ctx context.Context, playerID model.AccountID) ([]*model.Game, error)

	// Order operations
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id model.OrderID) (*model.Order, error)
	// CompleteOrder atomically marks an unpaid order paid and grants the game to its buyer.
	// Returns model.ErrAlreadyProcessed if the order was already paid.
	CompleteOrder(ctx context.Context, id model.OrderID, paidAt time.Time) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error)

	// Progress operations
	AddHighScore(ctx context.Context, score *model.HighScore) error
	// ListHighScores returns scores ordered by score descending. A zero gameID means all games.
	ListHighScores(ctx context.Context, gameID model.GameID) ([]*model.HighScore, error)
	AddSaveState(ctx context.Context, state *model.SaveState) error
	// LatestSaveState returns the most recently inserted save for the pair
	LatestSaveState(ctx context.Context, playerID model.AccountID, gameID model.GameID) (*model.SaveState, error)
}

// SessionStore persists login sessions
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
