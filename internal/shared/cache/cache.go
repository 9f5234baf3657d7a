package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis conecta no Redis usado pelos caches de FX e risco.
// Addr vazio desliga o cache: devolve nil e os consumidores tratam
// client nil como cache ausente.
func ConnectRedis(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
