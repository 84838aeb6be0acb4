package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const supersededRecordVersionV1 = 1

// RedisSupersededLedger keeps retired reset tokens in Redis with a retention
// TTL, after which Redis reaps them on its own.
type RedisSupersededLedger struct {
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
}

func NewRedisSupersededLedger(redisClient redis.UniversalClient, prefix string, retention time.Duration) *RedisSupersededLedger {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisSupersededLedger{
		redis:     redisClient,
		prefix:    prefix,
		retention: retention,
	}
}

func (l *RedisSupersededLedger) key(token string) string {
	return l.prefix + ":sup:" + token
}

func (l *RedisSupersededLedger) Supersede(ctx context.Context, token, identityID, loginID string, now time.Time) error {
	if token == "" {
		return nil
	}

	encoded, err := encodeSupersededRecord(&SupersededToken{
		Token:      token,
		IdentityID: identityID,
		LoginID:    loginID,
		ExpiresAt:  now.Add(-supersededBackdate),
	})
	if err != nil {
		return err
	}

	// NX keeps the first record; re-superseding the same token is a no-op.
	if err := l.redis.SetNX(ctx, l.key(token), encoded, l.retention).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *RedisSupersededLedger) Lookup(ctx context.Context, token string) (*SupersededToken, error) {
	data, err := l.redis.Get(ctx, l.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	entry, err := decodeSupersededRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	entry.Token = token
	return entry, nil
}

func (l *RedisSupersededLedger) Remove(ctx context.Context, token string) error {
	if err := l.redis.Del(ctx, l.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Record layout: version(1) expiresAtUnix(8 big-endian) idLen(2) id
// loginLen(2) login. The token itself lives in the key.
func encodeSupersededRecord(entry *SupersededToken) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(supersededRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, entry.ExpiresAt.Unix()); err != nil {
		return nil, err
	}

	for _, field := range []string{entry.IdentityID, entry.LoginID} {
		if len(field) > 65535 {
			return nil, errors.New("superseded record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeSupersededRecord(data []byte) (*SupersededToken, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != supersededRecordVersionV1 {
		return nil, errors.New("invalid superseded record version")
	}

	var expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}

	entry := &SupersededToken{
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}

	for _, target := range []*string{&entry.IdentityID, &entry.LoginID} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*target = string(field)
	}

	return entry, nil
}
