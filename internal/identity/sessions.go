package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionKeyPrefix = "sessions:"
	UserKeyPrefix    = "users:"
	StateKeyPrefix   = "oauth:state:"
	stateTTL         = 10 * time.Minute
)

var (
	ErrNoSession    = errors.New("not signed in")
	ErrUnknownUser  = errors.New("unknown user")
	ErrInvalidState = errors.New("invalid or expired sign-in state")
)

// SessionStore keeps sign-in sessions and pending OAuth states in Redis.
// Both expire through Redis TTLs.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

// Create opens a new session for user and records the user's profile.
func (s *SessionStore) Create(ctx context.Context, user types.User) (*types.Session, error) {
	now := s.now()
	sess := &types.Session{
		ID:        uuid.New().String(),
		User:      user,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+sess.ID, data, s.ttl)
	pipe.Set(ctx, UserKeyPrefix+user.UID, profile, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// GetUser returns the last recorded profile of uid.
func (s *SessionStore) GetUser(ctx context.Context, uid string) (*types.User, error) {
	data, err := s.client.Get(ctx, UserKeyPrefix+uid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	var user types.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// Get returns the live session with the given ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	data, err := s.client.Get(ctx, SessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Delete signs the session out. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, SessionKeyPrefix+id).Err()
}

// NewState issues a single-use OAuth state value.
func (s *SessionStore) NewState(ctx context.Context) (string, error) {
	state := uuid.New().String()
	if err := s.client.Set(ctx, StateKeyPrefix+state, 1, stateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeState verifies and invalidates a state issued by NewState.
func (s *SessionStore) ConsumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	n, err := s.client.Del(ctx, StateKeyPrefix+state).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}
