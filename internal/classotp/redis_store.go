package classotp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKey    = "class_otp:session"
	usedKeyPrefix = "class_otp:used:"
)

// createScript keeps a live session or replaces an expired one with the candidate.
// KEYS[1] session hash. ARGV: now_ms, id, code, issued_ms, expires_ms, ttl_ms, used prefix.
var createScript = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'id', 'code', 'issued_at', 'expires_at')
if cur[1] and tonumber(cur[4]) > tonumber(ARGV[1]) then
	return {0, cur[1], cur[2], cur[3], cur[4]}
end
if cur[1] then
	redis.call('DEL', ARGV[7] .. cur[1])
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'id', ARGV[2], 'code', ARGV[3], 'issued_at', ARGV[4], 'expires_at', ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return {1, ARGV[2], ARGV[3], ARGV[4], ARGV[5]}
`)

// reserveScript adds a student to the used-by set if the session is still current.
// KEYS[1] session hash, KEYS[2] used-by set. ARGV: id, register number.
var reserveScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') ~= ARGV[1] then
	return -1
end
local added = redis.call('SADD', KEYS[2], ARGV[2])
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
return added
`)

// invalidateScript deletes the session and its set only if it still holds id.
// KEYS[1] session hash, KEYS[2] used-by set. ARGV: id.
var invalidateScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') == ARGV[1] then
	redis.call('DEL', KEYS[1], KEYS[2])
	return 1
end
return 0
`)

// DefaultRetention is used when NewRedisStore is given a non-positive retention.
const DefaultRetention = time.Hour

// RedisStore shares the class code slot between instances. Expired sessions stay
// readable for retention after expiry so late redemptions are told the code expired.
// Once retention has passed the slot is empty and a redemption reports no code.
type RedisStore struct {
	client    redis.Cmdable
	retention time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisStore{client: client, retention: retention}
}

func usedKey(id string) string { return usedKeyPrefix + id }

// Current reads the session hash and the used-by count.
func (r *RedisStore) Current(ctx context.Context) (*Session, error) {
	vals, err := r.client.HMGet(ctx, sessionKey, "id", "code", "issued_at", "expires_at").Result()
	if err != nil {
		return nil, fmt.Errorf("read class code session: %w", err)
	}
	if vals[0] == nil {
		return nil, nil
	}
	s, err := parseSession(vals)
	if err != nil {
		return nil, err
	}
	n, err := r.client.SCard(ctx, usedKey(s.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("count class code uses: %w", err)
	}
	s.TotalUses = int(n)
	return s, nil
}

// CreateIfAbsent runs createScript.
func (r *RedisStore) CreateIfAbsent(ctx context.Context, s Session, now time.Time) (*Session, bool, error) {
	ttl := s.ExpiresAt.Sub(now) + r.retention
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	res, err := createScript.Run(ctx, r.client, []string{sessionKey},
		now.UnixMilli(), s.ID, s.Code, s.IssuedAt.UnixMilli(), s.ExpiresAt.UnixMilli(), ttl.Milliseconds(), usedKeyPrefix,
	).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("create class code session: %w", err)
	}
	if len(res) != 5 {
		return nil, false, fmt.Errorf("create class code session: unexpected reply %v", res)
	}
	created, _ := res[0].(int64)
	stored, err := parseSession(res[1:])
	if err != nil {
		return nil, false, err
	}
	if created == 1 {
		return stored, true, nil
	}
	n, err := r.client.SCard(ctx, usedKey(stored.ID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("count class code uses: %w", err)
	}
	stored.TotalUses = int(n)
	return stored, false, nil
}

// Invalidate runs invalidateScript.
func (r *RedisStore) Invalidate(ctx context.Context, id string) error {
	if err := invalidateScript.Run(ctx, r.client, []string{sessionKey, usedKey(id)}, id).Err(); err != nil {
		return fmt.Errorf("invalidate class code session: %w", err)
	}
	return nil
}

// Reserve runs reserveScript.
func (r *RedisStore) Reserve(ctx context.Context, id, registerNo string) (bool, error) {
	n, err := reserveScript.Run(ctx, r.client, []string{sessionKey, usedKey(id)}, id, registerNo).Int64()
	if err != nil {
		return false, fmt.Errorf("reserve class code use: %w", err)
	}
	switch n {
	case -1:
		return false, errSessionReplaced
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

// Release removes the student from the used-by set.
func (r *RedisStore) Release(ctx context.Context, id, registerNo string) error {
	if err := r.client.SRem(ctx, usedKey(id), registerNo).Err(); err != nil {
		return fmt.Errorf("release class code use: %w", err)
	}
	return nil
}

// Uses counts the used-by set.
func (r *RedisStore) Uses(ctx context.Context, id string) (int, error) {
	n, err := r.client.SCard(ctx, usedKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("count class code uses: %w", err)
	}
	return int(n), nil
}

// parseSession decodes id, code, issued_ms, expires_ms.
func parseSession(vals []interface{}) (*Session, error) {
	if len(vals) != 4 {
		return nil, errors.New("class code session: malformed hash")
	}
	str := make([]string, 4)
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("class code session: field %d is %T", i, v)
		}
		str[i] = s
	}
	issued, err := strconv.ParseInt(str[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("class code session issued_at: %w", err)
	}
	expires, err := strconv.ParseInt(str[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("class code session expires_at: %w", err)
	}
	return &Session{
		ID:        str[0],
		Code:      str[1],
		IssuedAt:  time.UnixMilli(issued),
		ExpiresAt: time.UnixMilli(expires),
	}, nil
}
