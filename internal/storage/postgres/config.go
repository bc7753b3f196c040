package postgres

import "fmt"

// Config holds Postgres connection settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// AutoMigrate creates or updates the tables on startup
	AutoMigrate bool
}

// DefaultConfig returns settings for a local development database
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        5432,
		User:        "gamestore",
		Password:    "gamestore",
		Name:        "gamestore",
		SSLMode:     "disable",
		AutoMigrate: true,
	}
}

// DSN renders the connection string understood by the pgx driver
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
