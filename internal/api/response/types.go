package response

import (
	"time"

	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/services/purchase"
)

// Record is one serialized row: its primary key and its fields, with
// foreign keys already resolved to names
type Record[T any] struct {
	PK     uint `json:"pk"`
	Fields T    `json:"fields"`
}

// HighScoreFields is a high score in API responses
type HighScoreFields struct {
	Player string `json:"player"`
	Game   string `json:"game"`
	Score  int    `json:"score"`
}

// HighScores converts resolved scores
func HighScores(scores []progress.Score) []Record[HighScoreFields] {
	out := make([]Record[HighScoreFields], 0, len(scores))
	for _, s := range scores {
		out = append(out, Record[HighScoreFields]{
			PK: s.HighScore.ID,
			Fields: HighScoreFields{
				Player: s.Player,
				Game:   s.Game,
				Score:  s.HighScore.Score,
			},
		})
	}
	return out
}

// SaleFields is an order in API responses. Prices are decimal strings.
type SaleFields struct {
	Buyer        string    `json:"buyer"`
	Seller       string    `json:"seller"`
	Game         string    `json:"game"`
	Price        string    `json:"price"`
	PurchaseTime time.Time `json:"purchase_time"`
	Status       string    `json:"status"`
}

// Sales converts resolved orders
func Sales(sales []purchase.Sale) []Record[SaleFields] {
	out := make([]Record[SaleFields], 0, len(sales))
	for _, s := range sales {
		out = append(out, Record[SaleFields]{
			PK: uint(s.Order.ID),
			Fields: SaleFields{
				Buyer:        s.Buyer,
				Seller:       s.Seller,
				Game:         s.Game,
				Price:        s.Order.Price.String(),
				PurchaseTime: s.Order.CreatedAt.UTC(),
				Status:       s.Status(),
			},
		})
	}
	return out
}

// GameFields is a catalog entry in API responses
type GameFields struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	GameURL     string `json:"game_url"`
	Price       string `json:"price"`
	Developer   string `json:"developer"`
}

// Games converts catalog listings
func Games(listings []catalog.Listing) []Record[GameFields] {
	out := make([]Record[GameFields], 0, len(listings))
	for _, l := range listings {
		out = append(out, Record[GameFields]{
			PK: uint(l.Game.ID),
			Fields: GameFields{
				Name:        l.Game.Name,
				Category:    l.Game.Category,
				Description: l.Game.Description,
				GameURL:     l.Game.URL,
				Price:       l.Game.Price.String(),
				Developer:   l.Developer,
			},
		})
	}
	return out
}

// Endpoint describes one REST resource in the index
type Endpoint struct {
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	Auth        string   `json:"auth,omitempty"`
}

// Index is the body of GET /rest/
type Index struct {
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Health is the body of GET /healthz
type Health struct {
	Status string `json:"status"`
}
