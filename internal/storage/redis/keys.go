package redis

import "fmt"

// Key prefix for all store data
const keyPrefix = "gamestore"

// sessionKey returns the Redis key for a login session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}
