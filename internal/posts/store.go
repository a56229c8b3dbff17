package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix          = "posts:data:"
	ParticipantsPrefix = "posts:participants:"
	TimelineKey        = "posts:timeline"
	ChangesChannel     = "posts:changed"

	DefaultListLimit = 100
)

var (
	ErrNotFound = errors.New("post not found")
	ErrOwnPost  = errors.New("you can't join your own post")
	ErrNoText   = errors.New("post text is required")
)

// Store keeps posts in Redis. Post bodies are JSON strings, participants
// live in a per-post sorted set scored by join time (so add/remove behave
// like arrayUnion/arrayRemove) and a timeline sorted set orders posts by
// creation time.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Create adds a new post authored by author.
func (s *Store) Create(ctx context.Context, author types.User, req types.CreatePostRequest) (*types.Post, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrNoText
	}

	post := &types.Post{
		ID:             uuid.New().String(),
		AuthorID:       author.UID,
		AuthorName:     author.Name(),
		AuthorPhotoURL: author.PhotoURL,
		Text:           text,
		Location:       strings.TrimSpace(req.Location),
		Time:           strings.TrimSpace(req.Time),
		Spots:          req.Spots,
		Participants:   []string{},
		CreatedAt:      s.now().UnixMilli(),
	}

	data, err := json.Marshal(post)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyPrefix+post.ID, data, 0)
	pipe.ZAdd(ctx, TimelineKey, redis.Z{Score: float64(post.CreatedAt), Member: post.ID})
	pipe.Publish(ctx, ChangesChannel, post.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

// Get retrieves a post with its current participants.
func (s *Store) Get(ctx context.Context, id string) (*types.Post, error) {
	data, err := s.client.Get(ctx, KeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var post types.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}

	participants, err := s.client.ZRange(ctx, ParticipantsPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	post.Participants = participants
	return &post, nil
}

// List returns up to limit posts, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]types.Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	ids, err := s.client.ZRevRange(ctx, TimelineKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	list := make([]types.Post, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if err != nil {
			log.Printf("Posts: skipping %s: %v", id, err)
			continue
		}
		list = append(list, *p)
	}
	return list, nil
}

// IDs returns every post ID on the timeline, oldest first.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	return s.client.ZRange(ctx, TimelineKey, 0, -1).Result()
}

// AddParticipant adds uid to the post's participants. Adding an existing
// participant is a no-op.
func (s *Store) AddParticipant(ctx context.Context, id, uid string) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.ZAddNX(ctx, ParticipantsPrefix+id, redis.Z{Score: float64(s.now().UnixMilli()), Member: uid})
	pipe.Publish(ctx, ChangesChannel, id)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveParticipant removes uid from the post's participants. Removing a
// non-participant is a no-op.
func (s *Store) RemoveParticipant(ctx context.Context, id, uid string) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, ParticipantsPrefix+id, uid)
	pipe.Publish(ctx, ChangesChannel, id)
	_, err := pipe.Exec(ctx)
	return err
}

// Delete removes a post and its participants.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, KeyPrefix+id, ParticipantsPrefix+id)
	pipe.ZRem(ctx, TimelineKey, id)
	pipe.Publish(ctx, ChangesChannel, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) ensureExists(ctx context.Context, id string) error {
	n, err := s.client.Exists(ctx, KeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribe emits the ordered post list once immediately and again after
// every change, until ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context, limit int) (<-chan []types.Post, error) {
	pubsub := s.client.Subscribe(ctx, ChangesChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", ChangesChannel, err)
	}

	out := make(chan []types.Post, 1)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		send := func() bool {
			list, err := s.List(ctx, limit)
			if err != nil {
				log.Printf("Posts: snapshot failed: %v", err)
				return ctx.Err() == nil
			}
			select {
			case out <- list:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok || !send() {
					return
				}
			}
		}
	}()
	return out, nil
}
