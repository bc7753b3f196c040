package catalog

import (
	"context"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage"
)

// NameResolver maps account and game IDs to display names, caching lookups for one request
type NameResolver struct {
	storage   storage.Storage
	usernames map[model.AccountID]string
	games     map[model.GameID]string
}

// NewNameResolver creates a resolver over the given storage
func NewNameResolver(storage storage.Storage) *NameResolver {
	return &NameResolver{
		storage:   storage,
		usernames: make(map[model.AccountID]string),
		games:     make(map[model.GameID]string),
	}
}

// Username returns the username for an account ID
func (r *NameResolver) Username(ctx context.Context, id model.AccountID) (string, error) {
	if name, ok := r.usernames[id]; ok {
		return name, nil
	}
	account, err := r.storage.GetAccount(ctx, id)
	if err != nil {
		return "", err
	}
	r.usernames[id] = account.Username
	return account.Username, nil
}

// GameName returns the name of a game
func (r *NameResolver) GameName(ctx context.Context, id model.GameID) (string, error) {
	if name, ok := r.games[id]; ok {
		return name, nil
	}
	game, err := r.storage.GetGame(ctx, id)
	if err != nil {
		return "", err
	}
	r.games[id] = game.Name
	return game.Name, nil
}
