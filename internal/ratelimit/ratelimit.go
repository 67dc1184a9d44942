package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"backoffice/internal/logger"
)

const keyPrefix = "backoffice:ratelimit"

type Options struct {
	// Rate uses the limiter format, e.g. "300-M" or "10-S".
	Rate          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Limiter throttles requests per client IP. Counters live in redis when it is
// configured and reachable, otherwise in process memory.
type Limiter struct {
	instance *limiter.Limiter
	client   *redis.Client
	backend  string
	log      zerolog.Logger
}

func ParseRate(raw string) (limiter.Rate, error) {
	rate, err := limiter.NewRateFromFormatted(raw)
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid rate %q: %w", raw, err)
	}
	return rate, nil
}

func New(ctx context.Context, opts Options) (*Limiter, error) {
	rate, err := ParseRate(opts.Rate)
	if err != nil {
		return nil, err
	}
	log := logger.WithComponent("ratelimit")

	if opts.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", opts.RedisAddr).Msg("redis unavailable, using in-memory rate limit store")
			_ = client.Close()
		} else {
			store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
				Prefix:   keyPrefix,
				MaxRetry: 3,
			})
			if err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("redis rate limit store: %w", err)
			}
			return &Limiter{instance: limiter.New(store, rate), client: client, backend: "redis", log: log}, nil
		}
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          keyPrefix,
		CleanUpInterval: time.Minute,
	})
	return &Limiter{instance: limiter.New(store, rate), backend: "memory", log: log}, nil
}

// Backend reports which store holds the counters: "redis" or "memory".
func (l *Limiter) Backend() string {
	return l.backend
}

func (l *Limiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

// Middleware rejects requests over the rate with 429. Store failures let the
// request through so an unhealthy redis never takes the API down.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return mgin.NewMiddleware(l.instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			l.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("rate limit store error")
			c.Next()
		}),
	)
}
