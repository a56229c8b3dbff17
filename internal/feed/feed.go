// Package feed holds a client's view of the post timeline and applies
// join and leave optimistically.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/EasterCompany/dex-meetup-service/internal/optimistic"
	"github.com/EasterCompany/dex-meetup-service/types"
)

// User-visible notices.
const (
	NoticeSignIn     = "Please sign in first!"
	NoticeOwnPost    = "You can't join your own post"
	NoticeWriteError = "Could not update. Please try again."
)

var (
	ErrSignedOut   = errors.New("not signed in")
	ErrOwnPost     = errors.New("cannot join own post")
	ErrUnknownPost = errors.New("post not in feed")
)

// Remote is the persisted side of a membership change.
type Remote interface {
	Join(ctx context.Context, postID string) error
	Leave(ctx context.Context, postID string) error
}

// Feed is safe for concurrent use. Snapshots from a live subscription may
// overwrite a pending optimistic change; that is accepted.
type Feed struct {
	mu     sync.RWMutex
	posts  []types.Post
	user   *types.User
	remote Remote
	notify func(string)
}

// New returns an empty feed. notify receives user-visible notices and may
// be nil.
func New(remote Remote, notify func(string)) *Feed {
	if notify == nil {
		notify = func(string) {}
	}
	return &Feed{remote: remote, notify: notify}
}

// SetUser sets the signed-in user. nil signs out.
func (f *Feed) SetUser(u *types.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = u
}

// Replace installs a fresh timeline snapshot, newest first.
func (f *Feed) Replace(posts []types.Post) {
	cp := make([]types.Post, len(posts))
	for i, p := range posts {
		p.Participants = append([]string(nil), p.Participants...)
		cp[i] = p
	}
	f.mu.Lock()
	f.posts = cp
	f.mu.Unlock()
}

// Posts returns a copy of the current timeline.
func (f *Feed) Posts() []types.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]types.Post, len(f.posts))
	for i, p := range f.posts {
		p.Participants = append([]string(nil), p.Participants...)
		out[i] = p
	}
	return out
}

// Post returns one post by id.
func (f *Feed) Post(id string) (types.Post, bool) {
	for _, p := range f.Posts() {
		if p.ID == id {
			return p, true
		}
	}
	return types.Post{}, false
}

// ToggleJoin joins the post if the user is not a participant, otherwise
// leaves it. The participant list changes before the remote call and is
// restored if the call fails.
func (f *Feed) ToggleJoin(ctx context.Context, postID string) error {
	m, err := f.toggleMutation(postID)
	if err != nil {
		return err
	}
	err = optimistic.Do(ctx, m)
	f.report(err)
	return err
}

// ToggleJoinAsync is ToggleJoin with the remote write in the background.
func (f *Feed) ToggleJoinAsync(ctx context.Context, postID string) <-chan error {
	m, err := f.toggleMutation(postID)
	if err != nil {
		done := make(chan error, 1)
		done <- err
		close(done)
		return done
	}

	out := make(chan error, 1)
	done := optimistic.Go(ctx, m)
	go func() {
		defer close(out)
		err := <-done
		f.report(err)
		out <- err
	}()
	return out
}

func (f *Feed) toggleMutation(postID string) (optimistic.Mutation, error) {
	f.mu.RLock()
	user := f.user
	f.mu.RUnlock()

	if user == nil {
		f.notify(NoticeSignIn)
		return optimistic.Mutation{}, ErrSignedOut
	}
	post, ok := f.Post(postID)
	if !ok {
		return optimistic.Mutation{}, ErrUnknownPost
	}
	uid := user.UID
	guard := func() error {
		if post.AuthorID == uid {
			return ErrOwnPost
		}
		return nil
	}
	add := func() { f.edit(postID, func(p *types.Post) { p.Participants = union(p.Participants, uid) }) }
	remove := func() { f.edit(postID, func(p *types.Post) { p.Participants = without(p.Participants, uid) }) }

	if post.HasParticipant(uid) {
		return optimistic.Mutation{
			Name:   "leave " + postID,
			Guard:  guard,
			Apply:  remove,
			Revert: add,
			Remote: func(ctx context.Context) error { return f.remote.Leave(ctx, postID) },
		}, nil
	}
	return optimistic.Mutation{
		Name:   "join " + postID,
		Guard:  guard,
		Apply:  add,
		Revert: remove,
		Remote: func(ctx context.Context) error { return f.remote.Join(ctx, postID) },
	}, nil
}

// NoticeFor returns the user-visible notice for the outcome of a join or
// leave, or "" when there is nothing to say.
func NoticeFor(err error) string {
	var rwe *optimistic.RemoteWriteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignedOut):
		return NoticeSignIn
	case errors.Is(err, ErrOwnPost):
		return NoticeOwnPost
	case errors.As(err, &rwe):
		return NoticeWriteError
	}
	return ""
}

func (f *Feed) report(err error) {
	if msg := NoticeFor(err); msg != "" {
		f.notify(msg)
	}
}

func (f *Feed) edit(id string, fn func(*types.Post)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			fn(&f.posts[i])
			return
		}
	}
}

func union(ids []string, uid string) []string {
	for _, id := range ids {
		if id == uid {
			return ids
		}
	}
	return append(ids, uid)
}

func without(ids []string, uid string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != uid {
			out = append(out, id)
		}
	}
	return out
}
