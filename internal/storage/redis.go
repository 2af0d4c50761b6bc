package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// RedisStore keeps records in Redis: one hash of moves keyed by ply and one
// summary key per game, plus a totals hash.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps a client. Per-game keys expire after ttl.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// OpenRedis connects to rawURL and checks the connection.
func OpenRedis(ctx context.Context, rawURL string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("redis url required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) keyMoves(gameID string) string { return "venom:moves:" + gameID }
func (s *RedisStore) keyGame(gameID string) string  { return "venom:game:" + gameID }
func (s *RedisStore) keyTotals() string             { return "venom:totals" }

func plyField(ply int) string { return fmt.Sprintf("%06d", ply) }

func (s *RedisStore) AppendMove(ctx context.Context, rec MoveRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := s.keyMoves(rec.GameID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, plyField(rec.Ply), raw)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Moves(ctx context.Context, gameID string) ([]MoveRecord, error) {
	items, err := s.rdb.HGetAll(ctx, s.keyMoves(gameID)).Result()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	recs := make([]MoveRecord, 0, len(items))
	// Fields are zero padded, so lexical order is ply order.
	for _, field := range slices.Sorted(maps.Keys(items)) {
		var rec MoveRecord
		if err := json.Unmarshal([]byte(items[field]), &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *RedisStore) SaveGame(ctx context.Context, g GameSummary) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}

	var t Totals
	t.add(g)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keyGame(g.GameID), raw, s.ttl)
		key := s.keyTotals()
		pipe.HIncrBy(ctx, key, "games_played", 1)
		pipe.HIncrBy(ctx, key, "white_wins", int64(t.WhiteWins))
		pipe.HIncrBy(ctx, key, "black_wins", int64(t.BlackWins))
		pipe.HIncrBy(ctx, key, "draws", int64(t.Draws))
		pipe.HIncrBy(ctx, key, "unfinished", int64(t.Unfinished))
		pipe.HIncrBy(ctx, key, "plies", t.Plies)
		return nil
	})
	return err
}

func (s *RedisStore) Game(ctx context.Context, gameID string) (GameSummary, error) {
	var g GameSummary
	raw, err := s.rdb.Get(ctx, s.keyGame(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, err
	}
	err = json.Unmarshal(raw, &g)
	return g, err
}

func (s *RedisStore) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.rdb.HGetAll(ctx, s.keyTotals()).Scan(&t)
	return t, err
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
