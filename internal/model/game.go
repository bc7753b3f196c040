package model

import "time"

// GameID uniquely identifies a game in the catalog
type GameID uint

// Game is a browser game listed in the store
type Game struct {
	ID          GameID
	Name        string // unique across the catalog
	Category    string
	Description string
	URL         string // where the game is served from (loaded in an iframe)
	Price       Price

	// DeveloperID is the account that added the game. Only it may edit the game.
	DeveloperID AccountID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree returns true if the game costs nothing. Free games cannot be ordered.
func (g *Game) IsFree() bool {
	return g.Price == 0
}

// OwnedBy returns true if the given developer added this game
func (g *Game) OwnedBy(id AccountID) bool {
	return g.DeveloperID == id
}

// GameFilter selects games from storage. Zero fields are not applied.
type GameFilter struct {
	Category     string // exact match
	NameContains string // case-insensitive substring
	DeveloperID  AccountID
}
