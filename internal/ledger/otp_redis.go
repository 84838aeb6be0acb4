package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpRecordVersionV1 = 1

// otpExpiryGrace keeps the record in Redis beyond its logical deadline so a
// late submission hits the script's expired branch instead of reading as
// never-issued. Only after the grace does Redis reap the key.
const otpExpiryGrace = time.Hour

// consumeOTPLua atomically performs GET→validate→DEL on a pending code.
// KEYS[1] = code key
// ARGV[1] = provided SHA-256 digest (32 bytes)
// ARGV[2] = current unix timestamp (int string)
//
// Returns "ok", "not_found", "expired" or "mismatch". The entry is deleted
// on ok and expired, and retained on mismatch.
var consumeOTPLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return 'not_found'
end

local providedHash = ARGV[1]
local nowUnix = tonumber(ARGV[2])

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return 'not_found'
end

local e0,e1,e2,e3,e4,e5,e6,e7 = string.byte(data, 2, 9)
local expiresAt = e0
for _, b in ipairs({e1,e2,e3,e4,e5,e6,e7}) do
  expiresAt = expiresAt * 256 + b
end

if nowUnix > expiresAt then
  redis.call('DEL', KEYS[1])
  return 'expired'
end

local storedHash = string.sub(data, 10, 41)
if storedHash ~= providedHash then
  return 'mismatch'
end

redis.call('DEL', KEYS[1])
return 'ok'
`)

// RedisOTPLedger keeps pending login codes in Redis, hashed, one key per
// address. Consumption runs as a Lua script so two concurrent submissions of
// the same code cannot both succeed.
type RedisOTPLedger struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisOTPLedger(redisClient redis.UniversalClient, prefix string) *RedisOTPLedger {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisOTPLedger{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (l *RedisOTPLedger) key(email string) string {
	return l.prefix + ":otp:" + normalizeEmail(email)
}

func (l *RedisOTPLedger) Issue(ctx context.Context, email, code string, now time.Time, ttl time.Duration) error {
	var buf bytes.Buffer
	buf.WriteByte(otpRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, now.Add(ttl).Unix()); err != nil {
		return err
	}
	digest := sha256.Sum256([]byte(code))
	buf.Write(digest[:])

	if err := l.redis.Set(ctx, l.key(email), buf.Bytes(), ttl+otpExpiryGrace).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *RedisOTPLedger) Consume(ctx context.Context, email, code string, now time.Time) (ConsumeResult, error) {
	digest := sha256.Sum256([]byte(code))

	result, err := consumeOTPLua.Run(ctx, l.redis,
		[]string{l.key(email)},
		string(digest[:]),
		now.Unix(),
	).Text()
	if err != nil {
		return ConsumeNotFound, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch result {
	case "ok":
		return ConsumeOk, nil
	case "not_found":
		return ConsumeNotFound, nil
	case "expired":
		return ConsumeExpired, nil
	case "mismatch":
		return ConsumeMismatch, nil
	default:
		return ConsumeNotFound, fmt.Errorf("%w: unexpected lua result %q", ErrUnavailable, result)
	}
}
