package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/founderdesk/daylog/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenKeyTpl = "token:%s" // token:${token}
	userKeyTpl  = "user:%s"  // user:${userID}
	tokenPrefix = "sk-dlog-"
)

// TokenManager is the write side of the identity collaborator: the admin bot
// issues tokens through it, the server's Auth reads them back.
type TokenManager struct {
	redis *redis.Client
}

func NewTokenManager(redis *redis.Client) *TokenManager {
	return &TokenManager{redis: redis}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// FetchOrCreateToken returns the user's existing token or mints a new one,
// keeping both the token->identity hash and the user->token pointer.
func (tm *TokenManager) FetchOrCreateToken(ctx context.Context, userID, role string) (*models.TokenInfo, bool, error) {
	userKey := fmt.Sprintf(userKeyTpl, userID)

	token, err := tm.redis.Get(ctx, userKey).Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("failed to check token: %w", err)
	}

	now := time.Now().UTC()

	if err == nil {
		info, err := tm.fetchTokenInfo(ctx, token)
		if err != nil {
			return nil, false, err
		}
		return info, false, nil
	}

	token, err = generateToken()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate token: %w", err)
	}

	pipe := tm.redis.Pipeline()
	pipe.HSet(ctx, fmt.Sprintf(tokenKeyTpl, token), map[string]interface{}{
		"token":            token,
		"user_id":          userID,
		"role":             models.NormalizeRole(role),
		"created_dttm_utc": now.Format(timeFormat),
	})
	pipe.Set(ctx, userKey, token, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to create token: %w", err)
	}

	info, err := tm.fetchTokenInfo(ctx, token)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// RevokeToken drops a user's token so the next issue mints a fresh one.
func (tm *TokenManager) RevokeToken(ctx context.Context, userID string) error {
	userKey := fmt.Sprintf(userKeyTpl, userID)

	token, err := tm.redis.Get(ctx, userKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up token for %s: %w", userID, err)
	}

	pipe := tm.redis.Pipeline()
	pipe.Del(ctx, fmt.Sprintf(tokenKeyTpl, token))
	pipe.Del(ctx, userKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke token for %s: %w", userID, err)
	}
	return nil
}

func (tm *TokenManager) fetchTokenInfo(ctx context.Context, token string) (*models.TokenInfo, error) {
	values, err := tm.redis.HGetAll(ctx, fmt.Sprintf(tokenKeyTpl, token)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get token info: %w", err)
	}

	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])

	return &models.TokenInfo{
		Token:       values["token"],
		UserID:      values["user_id"],
		Role:        values["role"],
		CreatedTime: createdTime,
	}, nil
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}
