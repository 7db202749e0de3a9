package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client é nil quando REDIS_ADDR não está configurado; nesse caso o
// cache vira no-op e todas as leituras vão direto ao banco.
var Client *redis.Client

func Init(addr string) {
	if addr == "" {
		log.Println("[INFO] Redis não configurado, cache desabilitado.")
		return
	}

	Client = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Redis inacessível em %s, cache desabilitado: %v", addr, err)
		Client = nil
	}
}

// Get retorna o valor e true quando a chave existe no cache.
func Get(ctx context.Context, key string) (string, bool) {
	if Client == nil {
		return "", false
	}
	val, err := Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set é best-effort; falha de cache nunca derruba a requisição.
func Set(ctx context.Context, key, value string, ttl time.Duration) {
	if Client == nil {
		return
	}
	if err := Client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[WARN] falha ao gravar no cache (%s): %v", key, err)
	}
}

func Invalidate(ctx context.Context, keys ...string) {
	if Client == nil || len(keys) == 0 {
		return
	}
	if err := Client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[WARN] falha ao invalidar o cache: %v", err)
	}
}
