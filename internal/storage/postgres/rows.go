package postgres

import (
	"time"

	"github.com/mcoot/gamestore/internal/model"
)

// Row types mirror the tables. Timestamps come from the service clock, so gorm's
// automatic time tracking is switched off.

type accountRow struct {
	ID               uint      `gorm:"primaryKey"`
	Username         string    `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash     string    `gorm:"not null"`
	Email            string    `gorm:"size:254;not null"`
	FirstName        string    `gorm:"size:150"`
	LastName         string    `gorm:"size:150"`
	Role             string    `gorm:"size:16;not null"`
	Activated        bool      `gorm:"not null;default:false"`
	VerificationHash string    `gorm:"size:64;index"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (accountRow) TableName() string { return "accounts" }

type gameRow struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:255;not null;uniqueIndex"`
	Category    string    `gorm:"size:64;not null;index"`
	Description string    `gorm:"size:500"`
	URL         string    `gorm:"not null"`
	PriceCents  int64     `gorm:"not null"`
	DeveloperID uint      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (gameRow) TableName() string { return "games" }

type ownershipRow struct {
	PlayerID  uint      `gorm:"primaryKey;autoIncrement:false"`
	GameID    uint      `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (ownershipRow) TableName() string { return "game_ownerships" }

type orderRow struct {
	ID         uint      `gorm:"primaryKey"`
	BuyerID    uint      `gorm:"not null;index"`
	SellerID   uint      `gorm:"not null;index"`
	GameID     uint      `gorm:"not null;index"`
	PriceCents int64     `gorm:"not null"`
	Paid       bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false"`
	PaidAt     *time.Time
}

func (orderRow) TableName() string { return "orders" }

type highScoreRow struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  uint      `gorm:"not null;index"`
	GameID    uint      `gorm:"not null;index"`
	Score     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (highScoreRow) TableName() string { return "high_scores" }

type saveStateRow struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  uint      `gorm:"not null;index:idx_save_states_player_game,priority:1"`
	GameID    uint      `gorm:"not null;index:idx_save_states_player_game,priority:2"`
	State     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (saveStateRow) TableName() string { return "save_states" }

// allRows lists every table for AutoMigrate
func allRows() []any {
	return []any{
		&accountRow{},
		&gameRow{},
		&ownershipRow{},
		&orderRow{},
		&highScoreRow{},
		&saveStateRow{},
	}
}

func toAccountRow(a *model.Account) *accountRow {
	return &accountRow{
		ID:               uint(a.ID),
		Username:         a.Username,
		PasswordHash:     a.PasswordHash,
		Email:            a.Email,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Role:             string(a.Role),
		Activated:        a.Activated,
		VerificationHash: a.VerificationHash,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (r *accountRow) toModel() *model.Account {
	return &model.Account{
		ID:               model.AccountID(r.ID),
		Username:         r.Username,
		PasswordHash:     r.PasswordHash,
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Role:             model.Role(r.Role),
		Activated:        r.Activated,
		VerificationHash: r.VerificationHash,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toGameRow(g *model.Game) *gameRow {
	return &gameRow{
		ID:          uint(g.ID),
		Name:        g.Name,
		Category:    g.Category,
		Description: g.Description,
		URL:         g.URL,
		PriceCents:  int64(g.Price),
		DeveloperID: uint(g.DeveloperID),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func (r *gameRow) toModel() *model.Game {
	return &model.Game{
		ID:          model.GameID(r.ID),
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		URL:         r.URL,
		Price:       model.Price(r.PriceCents),
		DeveloperID: model.AccountID(r.DeveloperID),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func gamesToModel(rows []gameRow) []*model.Game {
	games := make([]*model.Game, 0, len(rows))
	for i := range rows {
		games = append(games, rows[i].toModel())
	}
	return games
}

func toOrderRow(o *model.Order) *orderRow {
	return &orderRow{
		ID:         uint(o.ID),
		BuyerID:    uint(o.BuyerID),
		SellerID:   uint(o.SellerID),
		GameID:     uint(o.GameID),
		PriceCents: int64(o.Price),
		Paid:       o.Paid,
		CreatedAt:  o.CreatedAt,
		PaidAt:     o.PaidAt,
	}
}

func (r *orderRow) toModel() *model.Order {
	return &model.Order{
		ID:        model.OrderID(r.ID),
		BuyerID:   model.AccountID(r.BuyerID),
		SellerID:  model.AccountID(r.SellerID),
		GameID:    model.GameID(r.GameID),
		Price:     model.Price(r.PriceCents),
		Paid:      r.Paid,
		CreatedAt: r.CreatedAt,
		PaidAt:    r.PaidAt,
	}
}

func (r *highScoreRow) toModel() *model.HighScore {
	return &model.HighScore{
		ID:        r.ID,
		PlayerID:  model.AccountID(r.PlayerID),
		GameID:    model.GameID(r.GameID),
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
	}
}

func (r *saveStateRow) toModel() *model.SaveState {
	return &model.SaveState{
		ID:        r.ID,
		PlayerID:  model.AccountID(r.PlayerID),
		GameID:    model.GameID(r.GameID),
		State:     r.State,
		CreatedAt: r.CreatedAt,
	}
}
