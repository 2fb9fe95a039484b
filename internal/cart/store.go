package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "pos:session:"
	heldKeyPrefix    = "pos:held:"
	heldIndexKey     = "pos:held"
)

// Store persists checkout sessions and held orders as JSON documents in
// Redis.
type Store struct {
	R          *redis.Client
	SessionTTL time.Duration
	HeldTTL    time.Duration
}

func (st *Store) sessionTTL() time.Duration {
	if st == nil || st.SessionTTL <= 0 {
		return 12 * time.Hour
	}
	return st.SessionTTL
}

func (st *Store) heldTTL() time.Duration {
	if st == nil || st.HeldTTL <= 0 {
		return 24 * time.Hour
	}
	return st.HeldTTL
}

// GetSession loads a session by id.
func (st *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	if st == nil || st.R == nil {
		return nil, errors.New("cart store not configured")
	}
	data, err := st.R.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSession stores the session and refreshes its TTL.
func (st *Store) SaveSession(ctx context.Context, s *Session) error {
	if st == nil || st.R == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return st.R.Set(ctx, sessionKeyPrefix+s.ID, data, st.sessionTTL()).Err()
}

// DeleteSession removes the session entirely.
func (st *Store) DeleteSession(ctx context.Context, id string) error {
	if st == nil || st.R == nil {
		return errors.New("cart store not configured")
	}
	return st.R.Del(ctx, sessionKeyPrefix+id).Err()
}

// SaveHeld stores a held order and tracks it in the held index.
func (st *Store) SaveHeld(ctx context.Context, h *HeldOrder) error {
	if st == nil || st.R == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	pipe := st.R.TxPipeline()
	pipe.Set(ctx, heldKeyPrefix+h.ID, data, st.heldTTL())
	pipe.SAdd(ctx, heldIndexKey, h.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// ListHeld returns all parked orders still present in the store. Index
// entries whose payload expired are pruned as a side effect.
func (st *Store) ListHeld(ctx context.Context) ([]HeldOrder, error) {
	if st == nil || st.R == nil {
		return nil, errors.New("cart store not configured")
	}
	ids, err := st.R.SMembers(ctx, heldIndexKey).Result()
	if err != nil {
		return nil, err
	}
	held := make([]HeldOrder, 0, len(ids))
	for _, id := range ids {
		data, err := st.R.Get(ctx, heldKeyPrefix+id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = st.R.SRem(ctx, heldIndexKey, id).Err()
				continue
			}
			return nil, err
		}
		var h HeldOrder
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, err
		}
		held = append(held, h)
	}
	return held, nil
}

// TakeHeld removes and returns a held order.
func (st *Store) TakeHeld(ctx context.Context, id string) (*HeldOrder, error) {
	if st == nil || st.R == nil {
		return nil, errors.New("cart store not configured")
	}
	data, err := st.R.Get(ctx, heldKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var h HeldOrder
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	pipe := st.R.TxPipeline()
	pipe.Del(ctx, heldKeyPrefix+id)
	pipe.SRem(ctx, heldIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return &h, nil
}
