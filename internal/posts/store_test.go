package posts

import (
	"context"
	"testing"
	"time"

	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.User{UID: "alice", DisplayName: "Alice", Email: "alice@example.com"}
	bob   = types.User{UID: "bob", DisplayName: "Bob"}
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(client)
	clock := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStore_CreateAndListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "  Boba run at 7?  "})
	require.NoError(t, err)
	assert.Equal(t, "Boba run at 7?", first.Text)
	assert.Equal(t, "Alice", first.AuthorName)
	assert.Empty(t, first.Participants)

	second, err := s.Create(ctx, bob, types.CreatePostRequest{Text: "Study session", Location: "Odegaard"})
	require.NoError(t, err)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "Odegaard", list[0].Location)
}

func TestStore_CreateRequiresText(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(context.Background(), alice, types.CreatePostRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestStore_ParticipantsHaveSetSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "Evening walk"})
	require.NoError(t, err)

	require.NoError(t, s.AddParticipant(ctx, p.ID, "bob"))
	require.NoError(t, s.AddParticipant(ctx, p.ID, "carol"))
	require.NoError(t, s.AddParticipant(ctx, p.ID, "bob"))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, got.Participants)

	require.NoError(t, s.RemoveParticipant(ctx, p.ID, "bob"))
	require.NoError(t, s.RemoveParticipant(ctx, p.ID, "bob"))
	got, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, got.Participants)
}

func TestStore_UnknownPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.AddParticipant(ctx, "missing", "bob"), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestStore_JoinUpsertsChat(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "Board games"})
	require.NoError(t, err)

	joined, err := s.Join(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, joined.Participants)

	chat, err := s.GetChat(ctx, ChatID("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", chat.ID)
	assert.Equal(t, []string{"alice", "bob"}, chat.Users)
	assert.Equal(t, `Bob is down for "Board games"`, chat.LastMessage)
	createdAt := chat.CreatedAt

	// A second join merges into the same chat and keeps createdAt.
	_, err = s.Join(ctx, p.ID, bob)
	require.NoError(t, err)
	chat, err = s.GetChat(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, createdAt, chat.CreatedAt)
	assert.Greater(t, chat.UpdatedAt, createdAt)

	chats, err := s.ChatsForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestStore_JoinOwnPostRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "Coffee"})
	require.NoError(t, err)

	_, err = s.Join(ctx, p.ID, alice)
	assert.ErrorIs(t, err, ErrOwnPost)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
}

func TestStore_LeaveKeepsChat(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "Coffee"})
	require.NoError(t, err)
	_, err = s.Join(ctx, p.ID, bob)
	require.NoError(t, err)

	left, err := s.Leave(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.Empty(t, left.Participants)

	_, err = s.GetChat(ctx, "alice_bob")
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.Create(ctx, alice, types.CreatePostRequest{Text: "Coffee"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, p.ID))
	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_SubscribeEmitsSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, err := s.Subscribe(ctx, 10)
	require.NoError(t, err)

	select {
	case list := <-snapshots:
		assert.Empty(t, list)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	p, err := s.Create(context.Background(), alice, types.CreatePostRequest{Text: "Evening walk"})
	require.NoError(t, err)

	select {
	case list := <-snapshots:
		require.Len(t, list, 1)
		assert.Equal(t, p.ID, list[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after create")
	}

	cancel()
	for range snapshots {
	}
}

func TestChatID_Sorted(t *testing.T) {
	assert.Equal(t, "a_b", ChatID("b", "a"))
	assert.Equal(t, "a_b", ChatID("a", "b"))
}
