package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/EasterCompany/dex-meetup-service/internal/optimistic"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu     sync.Mutex
	calls  []string
	err    error
	during func()
}

func (r *fakeRemote) Join(_ context.Context, id string) error  { return r.record("join " + id) }
func (r *fakeRemote) Leave(_ context.Context, id string) error { return r.record("leave " + id) }

func (r *fakeRemote) record(call string) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	during := r.during
	r.mu.Unlock()
	if during != nil {
		during()
	}
	return r.err
}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) add(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

var (
	userA = types.User{UID: "a", DisplayName: "A"}
	userB = types.User{UID: "b", DisplayName: "B"}
)

func newFeed(remote *fakeRemote, user *types.User) (*Feed, *notices) {
	n := &notices{}
	f := New(remote, n.add)
	f.SetUser(user)
	f.Replace([]types.Post{{ID: "p1", AuthorID: userA.UID, Text: "Boba?", Participants: []string{}}})
	return f, n
}

func participants(t *testing.T, f *Feed) []string {
	t.Helper()
	p, ok := f.Post("p1")
	require.True(t, ok)
	return p.Participants
}

func TestToggleJoin_AppliesBeforeRemote(t *testing.T) {
	remote := &fakeRemote{}
	f, n := newFeed(remote, &userB)

	var seen []string
	remote.during = func() { seen = participants(t, f) }

	require.NoError(t, f.ToggleJoin(context.Background(), "p1"))
	assert.Equal(t, []string{"b"}, seen)
	assert.Equal(t, []string{"b"}, participants(t, f))
	assert.Equal(t, []string{"join p1"}, remote.calls)
	assert.Empty(t, n.msgs)
}

func TestToggleJoin_RevertsOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{err: errors.New("network down")}
	f, n := newFeed(remote, &userB)
	before := len(participants(t, f))

	err := f.ToggleJoin(context.Background(), "p1")
	require.Error(t, err)
	assert.Len(t, participants(t, f), before)
	assert.Equal(t, []string{NoticeWriteError}, n.msgs)
}

func TestToggleJoin_LeaveWhenAlreadyJoined(t *testing.T) {
	remote := &fakeRemote{}
	f, _ := newFeed(remote, &userB)
	require.NoError(t, f.ToggleJoin(context.Background(), "p1"))
	require.NoError(t, f.ToggleJoin(context.Background(), "p1"))

	assert.Empty(t, participants(t, f))
	assert.Equal(t, []string{"join p1", "leave p1"}, remote.calls)
}

func TestToggleJoin_LeaveFailureRestoresMembership(t *testing.T) {
	remote := &fakeRemote{}
	f, _ := newFeed(remote, &userB)
	require.NoError(t, f.ToggleJoin(context.Background(), "p1"))

	remote.err = errors.New("offline")
	require.Error(t, f.ToggleJoin(context.Background(), "p1"))
	assert.Equal(t, []string{"b"}, participants(t, f))
}

func TestToggleJoin_OwnPostIsRejected(t *testing.T) {
	remote := &fakeRemote{}
	f, n := newFeed(remote, &userA)

	err := f.ToggleJoin(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrOwnPost)
	assert.Empty(t, participants(t, f))
	assert.Empty(t, remote.calls)
	assert.Equal(t, []string{NoticeOwnPost}, n.msgs)
}

func TestToggleJoin_SignedOut(t *testing.T) {
	remote := &fakeRemote{}
	f, n := newFeed(remote, nil)

	assert.ErrorIs(t, f.ToggleJoin(context.Background(), "p1"), ErrSignedOut)
	assert.Empty(t, remote.calls)
	assert.Equal(t, []string{NoticeSignIn}, n.msgs)
}

func TestToggleJoin_UnknownPost(t *testing.T) {
	f, _ := newFeed(&fakeRemote{}, &userB)
	assert.ErrorIs(t, f.ToggleJoin(context.Background(), "nope"), ErrUnknownPost)
}

func TestToggleJoinAsync_RevertsOnFailure(t *testing.T) {
	release := make(chan struct{})
	remote := &fakeRemote{err: errors.New("timeout")}
	remote.during = func() { <-release }
	f, n := newFeed(remote, &userB)

	done := f.ToggleJoinAsync(context.Background(), "p1")
	assert.Equal(t, []string{"b"}, participants(t, f))
	close(release)

	require.Error(t, <-done)
	assert.Empty(t, participants(t, f))
	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, []string{NoticeWriteError}, n.msgs)
}

func TestNoticeFor(t *testing.T) {
	assert.Empty(t, NoticeFor(nil))
	assert.Equal(t, NoticeSignIn, NoticeFor(ErrSignedOut))
	assert.Equal(t, NoticeOwnPost, NoticeFor(ErrOwnPost))
	assert.Equal(t, NoticeWriteError, NoticeFor(&optimistic.RemoteWriteError{Name: "join p1", Err: errors.New("offline")}))
	assert.Empty(t, NoticeFor(ErrUnknownPost))
}
