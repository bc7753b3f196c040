package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// New opens a connection pool and optionally migrates the schema
func New(cfg Config) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(allRows()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a storage over an existing gorm handle (for testing)
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// notFound maps gorm's missing-record error to the given domain error
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// duplicate maps a unique-constraint violation to the given domain error
func duplicate(err, domainErr error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainErr
	}
	return err
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	row := toAccountRow(account)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return duplicate(err, model.ErrDuplicateUsername)
	}
	account.ID = model.AccountID(row.ID)
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrAccountNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, notFound(err, model.ErrAccountNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) GetAccountByVerificationHash(ctx context.Context, hash string) (*model.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).Where("verification_hash = ?", hash).First(&row).Error; err != nil {
		return nil, notFound(err, model.ErrAccountNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) UpdateAccount(ctx context.Context, account *model.Account) error {
	// Username and role are fixed at registration
	result := s.db.WithContext(ctx).Model(&accountRow{}).
		Where("id = ?", uint(account.ID)).
		Updates(map[string]any{
			"password_hash": account.PasswordHash,
			"email":         account.Email,
			"first_name":    account.FirstName,
			"last_name":     account.LastName,
			"updated_at":    account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) ActivateAccount(ctx context.Context, id model.AccountID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&accountRow{}).
			Where("id = ? AND activated = ?", uint(id), false).
			Update("activated", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}

		var row accountRow
		if err := tx.First(&row, uint(id)).Error; err != nil {
			return notFound(err, model.ErrAccountNotFound)
		}
		return model.ErrAlreadyActivated
	})
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	row := toGameRow(game)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return duplicate(err, model.ErrDuplicateName)
	}
	game.ID = model.GameID(row.ID)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var row gameRow
	if err := s.db.WithContext(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrGameNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) GetGameByName(ctx context.Context, name string) (*model.Game, error) {
	var row gameRow
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, notFound(err, model.ErrGameNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	// The developer is fixed when the game is added
	result := s.db.WithContext(ctx).Model(&gameRow{}).
		Where("id = ?", uint(game.ID)).
		Updates(map[string]any{
			"name":        game.Name,
			"category":    game.Category,
			"description": game.Description,
			"url":         game.URL,
			"price_cents": int64(game.Price),
			"updated_at":  game.UpdatedAt,
		})
	if result.Error != nil {
		return duplicate(result.Error, model.ErrDuplicateName)
	}
	if result.RowsAffected == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context, filter model.GameFilter) ([]*model.Game, error) {
	query := s.db.WithContext(ctx).Model(&gameRow{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.NameContains != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+escapeLike(strings.ToLower(filter.NameContains))+"%")
	}
	if filter.DeveloperID != 0 {
		query = query.Where("developer_id = ?", uint(filter.DeveloperID))
	}

	var rows []gameRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return gamesToModel(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Ownership operations

func (s *Storage) OwnsGame(ctx context.Context, playerID model.AccountID, gameID model.GameID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ownershipRow{}).
		Where("player_id = ? AND game_id = ?", uint(playerID), uint(gameID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Storage) ListOwnedGames(ctx context.Context, playerID model.AccountID) ([]*model.Game, error) {
	var rows []gameRow
	err := s.db.WithContext(ctx).
		Joins("JOIN game_ownerships ON game_ownerships.game_id = games.id").
		Where("game_ownerships.player_id = ?", uint(playerID)).
		Order("games.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return gamesToModel(rows), nil
}

// Order operations

func (s *Storage) CreateOrder(ctx context.Context, order *model.Order) error {
	row := toOrderRow(order)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	order.ID = model.OrderID(row.ID)
	return nil
}

func (s *Storage) GetOrder(ctx context.Context, id model.OrderID) (*model.Order, error) {
	var row orderRow
	if err := s.db.WithContext(ctx).First(&row, uint(id)).Error; err != nil {
		return nil, notFound(err, model.ErrOrderNotFound)
	}
	return row.toModel(), nil
}

// CompleteOrder relies on the conditional update: of any number of concurrent
// callers, exactly one sees a row affected.
func (s *Storage) CompleteOrder(ctx context.Context, id model.OrderID, paidAt time.Time) (*model.Order, error) {
	var completed orderRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&orderRow{}).
			Where("id = ? AND paid = ?", uint(id), false).
			Updates(map[string]any{"paid": true, "paid_at": paidAt})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&completed, uint(id)).Error; err != nil {
			return notFound(err, model.ErrOrderNotFound)
		}
		if result.RowsAffected == 0 {
			return model.ErrAlreadyProcessed
		}

		ownership := &ownershipRow{
			PlayerID:  completed.BuyerID,
			GameID:    completed.GameID,
			CreatedAt: paidAt,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(ownership).Error
	})
	if err != nil {
		return nil, err
	}
	return completed.toModel(), nil
}

func (s *Storage) ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	query := s.db.WithContext(ctx).Model(&orderRow{})
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", uint(filter.SellerID))
	}
	if filter.OrderID != 0 {
		query = query.Where("id = ?", uint(filter.OrderID))
	}
	if filter.GameID != 0 {
		query = query.Where("game_id = ?", uint(filter.GameID))
	}
	if filter.BuyerID != 0 {
		query = query.Where("buyer_id = ?", uint(filter.BuyerID))
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}

	var rows []orderRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*model.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].toModel())
	}
	return orders, nil
}

// Progress operations

func (s *Storage) AddHighScore(ctx context.Context, score *model.HighScore) error {
	row := &highScoreRow{
		PlayerID:  uint(score.PlayerID),
		GameID:    uint(score.GameID),
		Score:     score.Score,
		CreatedAt: score.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	score.ID = row.ID
	return nil
}

func (s *Storage) ListHighScores(ctx context.Context, gameID model.GameID) ([]*model.HighScore, error) {
	query := s.db.WithContext(ctx).Model(&highScoreRow{})
	if gameID != 0 {
		query = query.Where("game_id = ?", uint(gameID))
	}

	var rows []highScoreRow
	if err := query.Order("score DESC, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	scores := make([]*model.HighScore, 0, len(rows))
	for i := range rows {
		scores = append(scores, rows[i].toModel())
	}
	return scores, nil
}

func (s *Storage) AddSaveState(ctx context.Context, state *model.SaveState) error {
	row := &saveStateRow{
		PlayerID:  uint(state.PlayerID),
		GameID:    uint(state.GameID),
		State:     state.State,
		CreatedAt: state.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	state.ID = row.ID
	return nil
}

func (s *Storage) LatestSaveState(ctx context.Context, playerID model.AccountID, gameID model.GameID) (*model.SaveState, error) {
	var row saveStateRow
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND game_id = ?", uint(playerID), uint(gameID)).
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		return nil, notFound(err, model.ErrSaveNotFound)
	}
	return row.toModel(), nil
}
