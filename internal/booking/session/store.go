// Package session persists booking wizard sessions in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"booking_portal_backend/internal/booking/wizard"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "booking:session:"
	lockPrefix = "booking:lock:"
	maxRetries = 5
)

// unlockScript deletes a lock only if it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	ErrNotFound = apperr.NotFound("booking session not found")
	ErrBusy     = apperr.Conflict("booking session is being modified, please retry")
	ErrLocked   = errors.New("booking session is locked")
)

// Store keeps wizard snapshots as JSON with a sliding TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewStore creates a session store. Every write refreshes the TTL.
func NewStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

func key(id string) string {
	return keyPrefix + id
}

// Create stores a new session. It fails if the id is already taken.
func (s *Store) Create(ctx context.Context, snap wizard.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, key(snap.ID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflict("booking session already exists")
	}
	return nil
}

// Get loads the session owned by userID. Sessions of other users are
// reported as not found.
func (s *Store) Get(ctx context.Context, id, userID string) (wizard.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return wizard.Snapshot{}, ErrNotFound
		}
		return wizard.Snapshot{}, err
	}
	return decode(raw, userID)
}

// Save overwrites an existing session. A session deleted in the meantime is
// not recreated; Save reports ErrNotFound instead.
func (s *Store) Save(ctx context.Context, snap wizard.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetXX(ctx, key(snap.ID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Update loads the session, applies fn and writes the result back with
// optimistic locking. fn may run more than once when writers race. The
// snapshot returned by fn is stored even when fn also returns an error, so
// failed submissions keep their error state.
func (s *Store) Update(ctx context.Context, id, userID string, fn func(wizard.Snapshot) (wizard.Snapshot, error)) (wizard.Snapshot, error) {
	k := key(id)
	var (
		out   wizard.Snapshot
		fnErr error
	)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		current, err := decode(raw, userID)
		if err != nil {
			return err
		}

		out, fnErr = fn(current)
		encoded, err := json.Marshal(out)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, encoded, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			return out, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.WithContext(ctx).Debug("booking session write raced, retrying", "session_id", id, "attempt", attempt+1)
			continue
		}
		return wizard.Snapshot{}, err
	}
	return wizard.Snapshot{}, ErrBusy
}

// Delete removes the session owned by userID.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.rdb.Del(ctx, key(id)).Err()
}

// Retire shortens the lifetime of a finished session to ttl.
func (s *Store) Retire(ctx context.Context, id string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key(id), ttl).Err()
}

// Lock takes the exclusive send lock of a session. It returns ErrLocked when
// another sender holds it. The lock expires after ttl if never released.
func (s *Store) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, lockPrefix+id, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		ctx := context.WithoutCancel(ctx)
		if err := unlockScript.Run(ctx, s.rdb, []string{lockPrefix + id}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.log.WithContext(ctx).Warn("booking session unlock failed", "session_id", id, "error", err)
		}
	}, nil
}

func decode(raw []byte, userID string) (wizard.Snapshot, error) {
	var snap wizard.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return wizard.Snapshot{}, apperr.Wrap(apperr.KindInternal, "booking session is corrupt", err)
	}
	if userID != "" && snap.UserID != userID {
		return wizard.Snapshot{}, ErrNotFound
	}
	return snap, nil
}
