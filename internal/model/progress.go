package model

import "time"

// MaxSaveStateSize is the largest save state accepted, in bytes
const MaxSaveStateSize = 10000

// HighScore is a single submitted score. A player may have many per game.
type HighScore struct {
	ID        uint
	PlayerID  AccountID
	GameID    GameID
	Score     int
	CreatedAt time.Time
}

// SaveState is an opaque game-progress blob. The format belongs to the game.
type SaveState struct {
	ID        uint
	PlayerID  AccountID
	GameID    GameID
	State     string
	CreatedAt time.Time
}
