package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Entities are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
	games         map[model.GameID]*model.Game
	gameNameIndex map[string]model.GameID
	ownership     map[ownershipKey]struct{}
	orders        map[model.OrderID]*model.Order
	highScores    []*model.HighScore
	saveStates    []*model.SaveState

	nextAccountID model.AccountID
	nextGameID    model.GameID
	nextOrderID   model.OrderID
	nextScoreID   uint
	nextSaveID    uint
}

type ownershipKey struct {
	playerID model.AccountID
	gameID   model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
		games:         make(map[model.GameID]*model.Game),
		gameNameIndex: make(map[string]model.GameID),
		ownership:     make(map[ownershipKey]struct{}),
		orders:        make(map[model.OrderID]*model.Order),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIndex[account.Username]; taken {
		return model.ErrDuplicateUsername
	}

	s.nextAccountID++
	account.ID = s.nextAccountID
	stored := *account
	s.accounts[account.ID] = &stored
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	result := *account
	return &result, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.GetAccount(ctx, id)
}

func (s *Storage) GetAccountByVerificationHash(ctx context.Context, hash string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.VerificationHash == hash {
			result := *account
			return &result, nil
		}
	}
	return nil, model.ErrAccountNotFound
}

func (s *Storage) UpdateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[account.ID]
	if !ok {
		return model.ErrAccountNotFound
	}
	stored := *account
	// Username and role are fixed at registration
	stored.Username = existing.Username
	stored.Role = existing.Role
	s.accounts[account.ID] = &stored
	return nil
}

func (s *Storage) ActivateAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	if account.Activated {
		return model.ErrAlreadyActivated
	}
	account.Activated = true
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.gameNameIndex[game.Name]; taken {
		return model.ErrDuplicateName
	}

	s.nextGameID++
	game.ID = s.nextGameID
	stored := *game
	s.games[game.ID] = &stored
	s.gameNameIndex[game.Name] = game.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	result := *game
	return &result, nil
}

func (s *Storage) GetGameByName(ctx context.Context, name string) (*model.Game, error) {
	s.mu.RLock()
	id, ok := s.gameNameIndex[name]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s.GetGame(ctx, id)
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.games[game.ID]
	if !ok {
		return model.ErrGameNotFound
	}
	if game.Name != existing.Name {
		if _, taken := s.gameNameIndex[game.Name]; taken {
			return model.ErrDuplicateName
		}
		delete(s.gameNameIndex, existing.Name)
		s.gameNameIndex[game.Name] = game.ID
	}

	stored := *game
	stored.DeveloperID = existing.DeveloperID
	s.games[game.ID] = &stored
	return nil
}

func (s *Storage) ListGames(ctx context.Context, filter model.GameFilter) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(filter.NameContains)
	games := make([]*model.Game, 0)
	for _, game := range s.games {
		if filter.Category != "" && game.Category != filter.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(game.Name), needle) {
			continue
		}
		if filter.DeveloperID != 0 && game.DeveloperID != filter.DeveloperID {
			continue
		}
		result := *game
		games = append(games, &result)
	}
	sortGames(games)
	return games, nil
}

// Ownership operations

func (s *Storage) OwnsGame(ctx context.Context, playerID model.AccountID, gameID model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ownership[ownershipKey{playerID: playerID, gameID: gameID}]
	return ok, nil
}

func (s *Storage) ListOwnedGames(ctx context.Context, playerID model.AccountID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0)
	for key := range s.ownership {
		if key.playerID != playerID {
			continue
		}
		if game, ok := s.games[key.gameID]; ok {
			result := *game
			games = append(games, &result)
		}
	}
	sortGames(games)
	return games, nil
}

// Order operations

func (s *Storage) CreateOrder(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	order.ID = s.nextOrderID
	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

func (s *Storage) GetOrder(ctx context.Context, id model.OrderID) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	result := *order
	return &result, nil
}

func (s *Storage) CompleteOrder(ctx context.Context, id model.OrderID, paidAt time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	if order.Paid {
		return nil, model.ErrAlreadyProcessed
	}

	order.Paid = true
	order.PaidAt = &paidAt
	s.ownership[ownershipKey{playerID: order.BuyerID, gameID: order.GameID}] = struct{}{}

	result := *order
	return &result, nil
}

func (s *Storage) ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*model.Order, 0)
	for _, order := range s.orders {
		if filter.SellerID != 0 && order.SellerID != filter.SellerID {
			continue
		}
		if filter.OrderID != 0 && order.ID != filter.OrderID {
			continue
		}
		if filter.GameID != 0 && order.GameID != filter.GameID {
			continue
		}
		if filter.BuyerID != 0 && order.BuyerID != filter.BuyerID {
			continue
		}
		if filter.Paid != nil && order.Paid != *filter.Paid {
			continue
		}
		result := *order
		orders = append(orders, &result)
	}
	slices.SortFunc(orders, func(a, b *model.Order) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return orders, nil
}

// Progress operations

func (s *Storage) AddHighScore(ctx context.Context, score *model.HighScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextScoreID++
	score.ID = s.nextScoreID
	stored := *score
	s.highScores = append(s.highScores, &stored)
	return nil
}

func (s *Storage) ListHighScores(ctx context.Context, gameID model.GameID) ([]*model.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]*model.HighScore, 0)
	for _, score := range s.highScores {
		if gameID != 0 && score.GameID != gameID {
			continue
		}
		result := *score
		scores = append(scores, &result)
	}
	// Stable so equal scores keep insertion order
	slices.SortStableFunc(scores, func(a, b *model.HighScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scores, nil
}

func (s *Storage) AddSaveState(ctx context.Context, state *model.SaveState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSaveID++
	state.ID = s.nextSaveID
	stored := *state
	s.saveStates = append(s.saveStates, &stored)
	return nil
}

func (s *Storage) LatestSaveState(ctx context.Context, playerID model.AccountID, gameID model.GameID) (*model.SaveState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.saveStates) - 1; i >= 0; i-- {
		state := s.saveStates[i]
		if state.PlayerID == playerID && state.GameID == gameID {
			result := *state
			return &result, nil
		}
	}
	return nil, model.ErrSaveNotFound
}

func sortGames(games []*model.Game) {
	slices.SortFunc(games, func(a, b *model.Game) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
