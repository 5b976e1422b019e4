package models

import (
	"time"
)

// TokenInfo is the redis-side record behind an access token. The engine only
// reads UserID and Role from it; issuance lives in the admin bot.
type TokenInfo struct {
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	CreatedTime time.Time `json:"created_dttm_utc"`
}
