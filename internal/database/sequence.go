package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compsec/internal/logger"
	"compsec/internal/metrics"
	"compsec/internal/models"
)

// Identifier series and their display prefixes.
const (
	SeriesRisk       = "risk"
	SeriesAssessment = "assessment"
)

var prefixes = map[string]string{
	SeriesRisk:       "RISK",
	SeriesAssessment: "ASSESS",
}

// Sequence hands out strictly increasing values per series. Concurrent callers never
// receive the same value.
type Sequence interface {
	Next(ctx context.Context, series string) (int64, error)
}

// IDs is the active sequence. Init installs the Postgres one; UseRedis swaps in Redis.
var IDs Sequence

// FormatID renders n of series as RISK-0001 or ASSESS-0001. Values past 9999 keep all digits.
func FormatID(series string, n int64) string {
	return fmt.Sprintf("%s-%04d", prefixes[series], n)
}

// NextID reserves the next display identifier of series.
func NextID(ctx context.Context, series string) (string, error) {
	if IDs == nil {
		return "", errors.New("identifier sequence not initialized")
	}
	n, err := IDs.Next(ctx, series)
	if err != nil {
		return "", errors.Wrapf(err, "reserve %s identifier", series)
	}
	return FormatID(series, n), nil
}

// maxIDAttempts bounds how often a create reserves a new identifier after the last one was taken.
const maxIDAttempts = 3

// createWithID reserves an identifier of series and passes it to create. An insert that hits
// the unique index on the identifier is retried with a fresh one.
func createWithID(ctx context.Context, series string, create func(id string) error) error {
	var err error
	for i := 0; i < maxIDAttempts; i++ {
		var id string
		if id, err = NextID(ctx, series); err != nil {
			return err
		}
		if err = create(id); !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		logger.L().Warn("identifier already taken, reserving another", zap.String("id", id))
	}
	return errors.Wrapf(err, "no free %s identifier after %d attempts", series, maxIDAttempts)
}

type PostgresSequence struct {
	db *gorm.DB
}

func NewPostgresSequence(db *gorm.DB) *PostgresSequence {
	return &PostgresSequence{db: db}
}

const nextSQL = `INSERT INTO sequences (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
RETURNING value`

func (s *PostgresSequence) Next(ctx context.Context, series string) (int64, error) {
	var v int64
	if err := s.db.WithContext(ctx).Raw(nextSQL, series).Scan(&v).Error; err != nil {
		return 0, err
	}
	metrics.IdentifiersIssued.WithLabelValues(series, "postgres").Inc()
	return v, nil
}

// current is the last value handed out by the Postgres table, 0 for a fresh series.
func (s *PostgresSequence) current(ctx context.Context, series string) (int64, error) {
	var seq models.Sequence
	err := s.db.WithContext(ctx).Where("name = ?", series).Limit(1).Find(&seq).Error
	return seq.Value, err
}

// advance raises the Postgres counter to at least v so it can take over from Redis.
func (s *PostgresSequence) advance(ctx context.Context, series string, v int64) error {
	return s.db.WithContext(ctx).Exec(`INSERT INTO sequences (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = GREATEST(sequences.value, EXCLUDED.value)`, series, v).Error
}

// counterStore is the authoritative counter behind RedisSequence.
type counterStore interface {
	Sequence
	current(ctx context.Context, series string) (int64, error)
	advance(ctx context.Context, series string, v int64) error
}

// breakerTimeout is how long the breaker stays open before probing Redis again.
var breakerTimeout = 30 * time.Second

// raiseAndIncr lifts the key to at least ARGV[1] and then increments it, in one step.
var raiseAndIncr = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if cur < floor then
	redis.call("SET", KEYS[1], ARGV[1])
end
return redis.call("INCR", KEYS[1])
`)

// RedisSequence counts with INCR, never below the Postgres counter: every call lifts the key
// to the stored value first, and every issued value is written back. While Redis fails or the
// breaker is open, values come from Postgres instead.
type RedisSequence struct {
	client  *redis.Client
	store   counterStore
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewRedisSequence(client *redis.Client, store counterStore, log *zap.Logger) *RedisSequence {
	s := &RedisSequence{client: client, store: store, log: log}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-sequence",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

func redisKey(series string) string {
	return "compsec:seq:" + series
}

func (s *RedisSequence) Next(ctx context.Context, series string) (int64, error) {
	floor, err := s.store.current(ctx, series)
	if err != nil {
		return 0, err
	}
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return raiseAndIncr.Run(ctx, s.client, []string{redisKey(series)}, floor).Int64()
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.log.Warn("redis sequence unavailable, using postgres", zap.String("series", series), zap.Error(err))
		return s.store.Next(ctx, series)
	}
	v := out.(int64)
	if err := s.store.advance(ctx, series, v); err != nil {
		s.log.Warn("sequence write-back failed", zap.String("series", series), zap.Int64("value", v), zap.Error(err))
	}
	metrics.IdentifiersIssued.WithLabelValues(series, "redis").Inc()
	return v, nil
}

// UseRedis switches IDs to a Redis counter. Init must have run.
func UseRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	IDs = NewRedisSequence(client, NewPostgresSequence(DB), logger.L().Named("sequence"))
	return client, nil
}
