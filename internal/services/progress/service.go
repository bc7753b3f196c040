package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/gamestore/internal/dependencies/clock"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/storage"
)

// Message types exchanged with the game frame
const (
	MessageLoad  = "LOAD"
	MessageError = "ERROR"

	loadErrorInfo = "Gamestate could not be loaded"
)

// Service stores high scores and save states
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new progress service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// playable loads the game and checks the caller is a player allowed to play it
func (s *Service) playable(ctx context.Context, caller *model.Account, gameID model.GameID) (*model.Game, error) {
	if err := auth.Require(caller, model.RolePlayer); err != nil {
		return nil, err
	}
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.IsFree() {
		return game, nil
	}
	owns, err := s.storage.OwnsGame(ctx, caller.ID, gameID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, model.ErrForbidden
	}
	return game, nil
}

// SubmitScore appends a score. Earlier scores are kept.
func (s *Service) SubmitScore(ctx context.Context, caller *model.Account, gameID model.GameID, score int) (*model.HighScore, error) {
	if _, err := s.playable(ctx, caller, gameID); err != nil {
		return nil, err
	}

	hs := &model.HighScore{
		PlayerID:  caller.ID,
		GameID:    gameID,
		Score:     score,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.AddHighScore(ctx, hs); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "score submitted", "game_id", gameID, "player_id", caller.ID, "score", score)
	return hs, nil
}

// SaveState appends a save. The newest save is the one that loads.
func (s *Service) SaveState(ctx context.Context, caller *model.Account, gameID model.GameID, state string) (*model.SaveState, error) {
	if state == "" {
		return nil, model.NewValidationError("state", "This field is required.")
	}
	if len(state) > model.MaxSaveStateSize {
		return nil, model.NewValidationError("state",
			fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxSaveStateSize))
	}
	if _, err := s.playable(ctx, caller, gameID); err != nil {
		return nil, err
	}

	save := &model.SaveState{
		PlayerID:  caller.ID,
		GameID:    gameID,
		State:     state,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.AddSaveState(ctx, save); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "state saved", "game_id", gameID, "player_id", caller.ID, "bytes", len(state))
	return save, nil
}

// LoadLatest returns the most recent save for the caller and game
func (s *Service) LoadLatest(ctx context.Context, caller *model.Account, gameID model.GameID) (string, error) {
	if _, err := s.playable(ctx, caller, gameID); err != nil {
		return "", err
	}
	save, err := s.storage.LatestSaveState(ctx, caller.ID, gameID)
	if err != nil {
		return "", err
	}
	return save.State, nil
}

// loadMessage is the envelope posted to the game frame
type loadMessage struct {
	MessageType string          `json:"messageType"`
	GameState   json.RawMessage `json:"gameState,omitempty"`
	Info        string          `json:"info,omitempty"`
}

// LoadMessage answers a load request with a LOAD or ERROR envelope.
// A missing save, or a caller not allowed to load, gives the ERROR envelope.
func (s *Service) LoadMessage(ctx context.Context, caller *model.Account, gameID model.GameID) (string, error) {
	state, err := s.LoadLatest(ctx, caller, gameID)
	switch {
	case errors.Is(err, model.ErrSaveNotFound), errors.Is(err, model.ErrForbidden):
		return encodeMessage(loadMessage{MessageType: MessageError, Info: loadErrorInfo})
	case err != nil:
		return "", err
	}
	return LoadEnvelope(state)
}

// LoadEnvelope wraps a stored state. States that are not JSON are embedded as a JSON string.
func LoadEnvelope(state string) (string, error) {
	raw := json.RawMessage(state)
	if !json.Valid(raw) {
		quoted, err := json.Marshal(state)
		if err != nil {
			return "", err
		}
		raw = quoted
	}
	return encodeMessage(loadMessage{MessageType: MessageLoad, GameState: raw})
}

func encodeMessage(msg loadMessage) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Score is a high score with names resolved
type Score struct {
	HighScore *model.HighScore
	Player    string
	Game      string
}

// HighScores returns the leaderboard of one game, best first
func (s *Service) HighScores(ctx context.Context, gameID model.GameID) (*model.Game, []Score, error) {
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	scores, err := s.storage.ListHighScores(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := s.resolve(ctx, scores)
	if err != nil {
		return nil, nil, err
	}
	return game, resolved, nil
}

// QueryHighScores serves the JSON endpoint: every score, or those of the named game.
// An unknown game name matches nothing.
func (s *Service) QueryHighScores(ctx context.Context, gameName *string) ([]Score, error) {
	var gameID model.GameID
	if gameName != nil {
		game, err := s.storage.GetGameByName(ctx, *gameName)
		if errors.Is(err, model.ErrGameNotFound) {
			return []Score{}, nil
		}
		if err != nil {
			return nil, err
		}
		gameID = game.ID
	}

	scores, err := s.storage.ListHighScores(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, scores)
}

func (s *Service) resolve(ctx context.Context, scores []*model.HighScore) ([]Score, error) {
	names := catalog.NewNameResolver(s.storage)
	resolved := make([]Score, 0, len(scores))
	for _, hs := range scores {
		player, err := names.Username(ctx, hs.PlayerID)
		if err != nil {
			return nil, err
		}
		game, err := names.GameName(ctx, hs.GameID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, Score{HighScore: hs, Player: player, Game: game})
	}
	return resolved, nil
}
