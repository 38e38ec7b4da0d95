package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"chainchat/config"
)

const Separator = ":"

type Redis struct {
	Prefix string
	Client *redis.Client

	ctx context.Context
}

func NewRedis(cfg *config.Redis) *Redis {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:     *cfg.Address,
		Password: *cfg.Password,
		DB:       *cfg.Database,
		PoolSize: *cfg.PoolSize,
	})

	return &Redis{
		Prefix: *cfg.Prefix,
		Client: client,

		ctx: ctx,
	}
}

func (r *Redis) Close() {
	r.Client.Close()
}

func (r *Redis) sessionKey(token string) string {
	return r.Prefix + Separator + "session" + Separator + token
}

// StoreSession 保存会话
func (r *Redis) StoreSession(token string, identity *Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return r.Client.Set(r.ctx, r.sessionKey(token), data, ttl).Err()
}

// SessionIdentity resolves a session token back to the identity stored
// at login. Returns nil for unknown or expired tokens.
func (r *Redis) SessionIdentity(token string) (*Identity, error) {
	data, err := r.Client.Get(r.ctx, r.sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// DeleteSession 删除会话
func (r *Redis) DeleteSession(token string) error {
	return r.Client.Del(r.ctx, r.sessionKey(token)).Err()
}
