package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/types"
)

const (
	ChatKeyPrefix       = "chats:data:"
	ChatIndexUserPrefix = "chats:index:user:"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatID is the deterministic chat identifier for two users: both IDs
// sorted and joined with "_".
func ChatID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// UpsertChat merges users, lastMessage and updatedAt into the chat record.
// createdAt is only written when the chat does not exist yet.
func (s *Store) UpsertChat(ctx context.Context, users []string, lastMessage string) (string, error) {
	if len(users) != 2 {
		return "", fmt.Errorf("chat needs exactly two users, got %d", len(users))
	}
	id := ChatID(users[0], users[1])
	usersJSON, err := json.Marshal(users)
	if err != nil {
		return "", err
	}
	now := s.now().UnixMilli()
	key := ChatKeyPrefix + id

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "createdAt", now)
	pipe.HSet(ctx, key, "users", string(usersJSON), "lastMessage", lastMessage, "updatedAt", now)
	for _, uid := range users {
		pipe.SAdd(ctx, ChatIndexUserPrefix+uid, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// GetChat reads a single chat record.
func (s *Store) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	fields, err := s.client.HGetAll(ctx, ChatKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrChatNotFound
	}

	chat := &types.Chat{ID: id, LastMessage: fields["lastMessage"]}
	if err := json.Unmarshal([]byte(fields["users"]), &chat.Users); err != nil {
		return nil, fmt.Errorf("decode chat %s users: %w", id, err)
	}
	_, _ = fmt.Sscan(fields["createdAt"], &chat.CreatedAt)
	_, _ = fmt.Sscan(fields["updatedAt"], &chat.UpdatedAt)
	return chat, nil
}

// ChatsForUser lists the chats uid belongs to, most recently updated first.
func (s *Store) ChatsForUser(ctx context.Context, uid string) ([]types.Chat, error) {
	ids, err := s.client.SMembers(ctx, ChatIndexUserPrefix+uid).Result()
	if err != nil {
		return nil, err
	}

	chats := make([]types.Chat, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetChat(ctx, id)
		if err != nil {
			if errors.Is(err, ErrChatNotFound) {
				continue
			}
			return nil, err
		}
		chats = append(chats, *c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt > chats[j].UpdatedAt })
	return chats, nil
}

// Join adds user to the post's participants and upserts the chat between
// the author and user. Authors cannot join their own posts.
func (s *Store) Join(ctx context.Context, id string, user types.User) (*types.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == user.UID {
		return nil, ErrOwnPost
	}
	if err := s.AddParticipant(ctx, id, user.UID); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s is down for \"%s\"", displayOr(user.DisplayName, "Someone"), post.Text)
	if _, err := s.UpsertChat(ctx, []string{post.AuthorID, user.UID}, msg); err != nil {
		return nil, fmt.Errorf("upsert chat: %w", err)
	}
	return s.Get(ctx, id)
}

// Leave removes user from the post's participants. The chat is kept.
func (s *Store) Leave(ctx context.Context, id string, user types.User) (*types.Post, error) {
	if err := s.RemoveParticipant(ctx, id, user.UID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func displayOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
