package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mcoot/gamestore/internal/dependencies/clock"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/storage"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 500
)

// Service manages the game catalog
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	logger     *slog.Logger
	categories model.Categories
}

// New creates a new catalog service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, categories model.Categories) *Service {
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		logger:     logger,
		categories: categories,
	}
}

// Categories returns the configured category set in display order
func (s *Service) Categories() model.Categories {
	return s.categories
}

// GameInput is the add-game form
type GameInput struct {
	Name        string
	Category    string
	Description string
	URL         string
	Price       string
}

// GameEdit is the edit-game form. The URL cannot be changed.
type GameEdit struct {
	Name        string
	Category    string
	Description string
	Price       string
}

// validateFields checks the fields shared by both forms and parses the price
func validateFields(verr *model.ValidationError, name, category, description, price string) model.Price {
	if name == "" {
		verr.Add("name", "This field is required.")
	} else if len(name) > maxNameLength {
		verr.Add("name", fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength))
	}
	if category == "" {
		verr.Add("category", "This field is required.")
	}
	if description == "" {
		verr.Add("description", "This field is required.")
	} else if len(description) > maxDescriptionLength {
		verr.Add("description", fmt.Sprintf("Ensure this value has at most %d characters.", maxDescriptionLength))
	}

	parsed, err := model.ParsePrice(price)
	if err != nil {
		verr.Add("price", "Enter a non-negative number with at most two decimal places.")
	}
	return parsed
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// AddGame lists a new game under the calling developer
func (s *Service) AddGame(ctx context.Context, caller *model.Account, in GameInput) (*model.Game, error) {
	if err := auth.Require(caller, model.RoleDeveloper); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)

	verr := &model.ValidationError{}
	price := validateFields(verr, in.Name, in.Category, in.Description, in.Price)
	if in.URL == "" {
		verr.Add("game_url", "This field is required.")
	} else if !validURL(in.URL) {
		verr.Add("game_url", "Enter a valid URL.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if !s.categories.Contains(in.Category) {
		return nil, model.ErrInvalidCategory
	}

	now := s.clock.Now()
	game := &model.Game{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		URL:         in.URL,
		Price:       price,
		DeveloperID: caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "game added",
		"game_id", game.ID,
		"name", game.Name,
		"developer_id", caller.ID,
	)
	return game, nil
}

// EditGame updates a game. Only the developer who added it may do so.
func (s *Service) EditGame(ctx context.Context, caller *model.Account, gameID model.GameID, in GameEdit) (*model.Game, error) {
	if err := auth.Require(caller, model.RoleDeveloper); err != nil {
		return nil, err
	}

	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireGameOwner(caller, game); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)

	verr := &model.ValidationError{}
	price := validateFields(verr, in.Name, in.Category, in.Description, in.Price)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if !s.categories.Contains(in.Category) {
		return nil, model.ErrInvalidCategory
	}

	updated := *game
	updated.Name = in.Name
	updated.Category = in.Category
	updated.Description = in.Description
	updated.Price = price
	updated.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateGame(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "game edited", "game_id", game.ID, "developer_id", caller.ID)
	return &updated, nil
}

// GetGame returns a game by ID
func (s *Service) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// ListQuery is the gamelist search form
type ListQuery struct {
	Category string
	Name     string
}

// ListGames returns the catalog narrowed by either category or name.
// Category wins when both are given; an unknown category falls back to every game.
func (s *Service) ListGames(ctx context.Context, q ListQuery) ([]*model.Game, error) {
	var filter model.GameFilter
	switch {
	case q.Category != "":
		if s.categories.Contains(q.Category) {
			filter.Category = q.Category
		}
	case q.Name != "":
		filter.NameContains = q.Name
	}
	return s.storage.ListGames(ctx, filter)
}

// GamesForAccount returns owned games for players and added games for developers
func (s *Service) GamesForAccount(ctx context.Context, account *model.Account) ([]*model.Game, error) {
	switch {
	case account.IsPlayer():
		return s.storage.ListOwnedGames(ctx, account.ID)
	case account.IsDeveloper():
		return s.storage.ListGames(ctx, model.GameFilter{DeveloperID: account.ID})
	default:
		return nil, model.ErrForbidden
	}
}

// Access describes what an account may do with a game on its play page
type Access struct {
	Game          *model.Game
	PlayerOwns    bool
	DeveloperOwns bool
}

// CanPlay reports whether the game frame is shown. Players need to own paid games;
// developers may try out their own.
func (a *Access) CanPlay(account *model.Account) bool {
	switch {
	case account.IsPlayer():
		return a.PlayerOwns || a.Game.IsFree()
	case account.IsDeveloper():
		return a.DeveloperOwns
	default:
		return false
	}
}

// Access loads a game along with the caller's relationship to it. The caller may be nil.
func (s *Service) Access(ctx context.Context, account *model.Account, gameID model.GameID) (*Access, error) {
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	access := &Access{Game: game}
	switch {
	case account.IsPlayer():
		owns, err := s.storage.OwnsGame(ctx, account.ID, gameID)
		if err != nil {
			return nil, err
		}
		access.PlayerOwns = owns
	case account.IsDeveloper():
		access.DeveloperOwns = game.OwnedBy(account.ID)
	}
	return access, nil
}

// Listing is a game with its developer's username resolved
type Listing struct {
	Game      *model.Game
	Developer string
}

// GameQuery filters the public games endpoint. A nil field is not applied.
type GameQuery struct {
	Category  *string
	Developer *string
}

// QueryGames serves the JSON games endpoint. The category is matched exactly without
// validation; a developer that does not exist, or is not a developer, matches nothing.
func (s *Service) QueryGames(ctx context.Context, q GameQuery) ([]Listing, error) {
	var filter model.GameFilter
	if q.Category != nil {
		if *q.Category == "" {
			return []Listing{}, nil
		}
		filter.Category = *q.Category
	}
	if q.Developer != nil {
		developer, err := s.storage.GetAccountByUsername(ctx, *q.Developer)
		if errors.Is(err, model.ErrAccountNotFound) {
			return []Listing{}, nil
		}
		if err != nil {
			return nil, err
		}
		if !developer.IsDeveloper() {
			return []Listing{}, nil
		}
		filter.DeveloperID = developer.ID
	}

	games, err := s.storage.ListGames(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := NewNameResolver(s.storage)
	listings := make([]Listing, 0, len(games))
	for _, game := range games {
		name, err := names.Username(ctx, game.DeveloperID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, Listing{Game: game, Developer: name})
	}
	return listings, nil
}

// DeveloperName returns the username of the developer who added the game
func (s *Service) DeveloperName(ctx context.Context, game *model.Game) (string, error) {
	return NewNameResolver(s.storage).Username(ctx, game.DeveloperID)
}
