package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jobseeker-bot/internal/session/domain"
)

const keyPrefix = "onboarding:session:"

// redisClient is the subset of redis.UniversalClient used by RedisStore.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisStore keeps sessions as JSON values so conversations survive a bot restart.
// Every write refreshes the TTL; ttl <= 0 keeps keys until evicted.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
	nowF   func() time.Time
}

// NewRedisStore returns a store over client (a *redis.Client or *redis.ClusterClient).
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return newRedisStore(client, ttl)
}

func newRedisStore(client redisClient, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		nowF:   func() time.Time { return time.Now().UTC() },
	}
}

func sessionKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Get loads the session for userID. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, userID int64) (domain.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return sess, true, nil
}

// Init writes a fresh session for userID.
func (s *RedisStore) Init(ctx context.Context, userID int64) (domain.Session, error) {
	sess := domain.New(userID, s.nowF())
	if err := s.write(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Save replaces the stored session.
func (s *RedisStore) Save(ctx context.Context, sess domain.Session) error {
	sess.UpdatedAt = s.nowF()
	return s.write(ctx, sess)
}

// Update is a plain read-modify-write. Callers serialize per user, so no WATCH is taken.
func (s *RedisStore) Update(ctx context.Context, userID int64, fn func(*domain.Session)) (domain.Session, error) {
	sess, found, err := s.Get(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if !found {
		return domain.Session{}, ErrNotFound
	}
	fn(&sess)
	sess.UserID = userID
	sess.UpdatedAt = s.nowF()
	if err := s.write(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// PingContext checks the Redis connection; used by the health server.
func (s *RedisStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) write(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sess.UserID, err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
