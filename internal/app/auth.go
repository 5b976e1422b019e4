// internal/app/auth.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

// Auth resolves bearer tokens into a verified (user id, role) pair via
// redis. Token issuance lives in the admin bot; the engine only reads.
type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Auth.TokenKeyTemplate,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Identify looks the token up and returns the user id and role stored for
// it. The engine trusts this pair and does no further authentication.
func (a *Auth) Identify(ctx context.Context, token string) (string, string, error) {
	key := strings.NewReplacer(
		"{token}", token,
	).Replace(a.keyTemplate)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug.Printf("Token not found for key: %s", key)
		return "", "", fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return "", "", fmt.Errorf("redis error: %w", err)
	}

	if len(fields) == 0 || fields["user_id"] == "" {
		logger.Debug.Printf("No identity behind token key %s", key)
		return "", "", fmt.Errorf("invalid token")
	}

	return fields["user_id"], fields["role"], nil
}
