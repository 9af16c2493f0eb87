package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xrplist/warden/core"
)

// challengeRetention is how long a consumed or expired challenge record is
// kept around. The verifier itself never deletes challenges; expiry of the
// key is the store's retention policy.
const challengeRetention = 24 * time.Hour

// RedisChallengeStore keeps challenges in Redis as JSON values. The
// ConsumeChallenge compare-and-set is built on WATCH/MULTI: if another
// verifier touches the key between read and write, the transaction aborts
// and the loser reports the challenge as used.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeStore creates a challenge store on an existing client.
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "warden:challenge:",
	}
}

type challengeRecord struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *RedisChallengeStore) InsertChallenge(ctx context.Context, c *core.Challenge) error {
	payload, err := json.Marshal(challengeRecord(*c))
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	ttl := time.Until(c.ExpiresAt) + challengeRetention
	if err := s.client.Set(ctx, s.prefix+c.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

func (s *RedisChallengeStore) GetChallenge(ctx context.Context, id string) (*core.Challenge, error) {
	val, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	var rec challengeRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	c := core.Challenge(rec)
	return &c, nil
}

func (s *RedisChallengeStore) ConsumeChallenge(ctx context.Context, id string) error {
	key := s.prefix + id

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrChallengeNotFound
		}
		if err != nil {
			return err
		}

		var rec challengeRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal challenge: %w", err)
		}
		if rec.Used {
			return core.ErrChallengeUsed
		}
		rec.Used = true

		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		return err
	}, key)

	// The transaction aborts when a concurrent verifier wrote the key first;
	// by then the challenge is consumed.
	if errors.Is(err, redis.TxFailedErr) {
		return core.ErrChallengeUsed
	}
	return err
}
