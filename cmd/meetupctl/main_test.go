package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/EasterCompany/dex-meetup-service/internal/feed"
	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, server, db string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(db)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", server, "--db", db}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func savedSet(t *testing.T, db string) joy.DailyTaskSet {
	t.Helper()
	store, err := joy.OpenSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()

	data, ok, err := store.Get(context.Background(), joy.CacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	var set joy.DailyTaskSet
	require.NoError(t, json.Unmarshal(data, &set))
	return set
}

func suggestionServer(t *testing.T) *httptest.Server {
	t.Helper()
	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.SuggestRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		items := make([]string, req.Count)
		for i := range items {
			n++
			items[i] = fmt.Sprintf("Idea %d", n)
		}
		_ = json.NewEncoder(w).Encode(types.SuggestResponse{Items: items, Model: "test"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJoyCommands(t *testing.T) {
	srv := suggestionServer(t)
	db := filepath.Join(t.TempDir(), "nested", "joy.db")

	_, _, err := run(t, srv.URL, db, "joy", "show")
	require.NoError(t, err)
	set := savedSet(t, db)
	assert.Equal(t, joy.DateKey(time.Now()), set.DateKey)
	assert.Equal(t, []string{"Idea 1", "Idea 2", "Idea 3"}, set.Titles())

	_, _, err = run(t, srv.URL, db, "joy", "toggle", "1")
	require.NoError(t, err)
	assert.True(t, savedSet(t, db).Items[0].Done)

	_, _, err = run(t, srv.URL, db, "joy", "add", "Call", "grandma")
	require.NoError(t, err)
	assert.Equal(t, "Call grandma", savedSet(t, db).Items[0].Title)

	_, _, err = run(t, srv.URL, db, "joy", "suggest")
	require.NoError(t, err)
	set = savedSet(t, db)
	assert.Equal(t, "Idea 4", set.Items[0].Title)
	assert.Len(t, set.Items, 5)

	_, _, err = run(t, srv.URL, db, "joy", "toggle", "9")
	assert.Error(t, err)

	_, _, err = run(t, srv.URL, db, "joy", "reset")
	require.NoError(t, err)
	assert.Equal(t, []string{"Idea 5", "Idea 6", "Idea 7"}, savedSet(t, db).Titles())
}

func TestLoginSavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sess-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Please sign in first!"})
			return
		}
		_ = json.NewEncoder(w).Encode(types.User{UID: "ava", DisplayName: "Ava", Email: "ava@example.com"})
	}))
	defer srv.Close()
	db := filepath.Join(t.TempDir(), "joy.db")

	out, _, err := run(t, srv.URL, db, "login")
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL+"/auth/login")

	_, _, err = run(t, srv.URL, db, "login", "--session", "wrong")
	assert.Error(t, err)

	out, _, err = run(t, srv.URL, db, "login", "--session", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ava")

	out, _, err = run(t, srv.URL, db, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ava@example.com")
}

func TestPostsJoinFailureReportsNotice(t *testing.T) {
	post := types.Post{ID: "p1", AuthorID: "bob", AuthorName: "Bob", Text: "Coffee", Participants: []string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.User{UID: "ava", DisplayName: "Ava"})
	})
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]types.Post{post})
	})
	mux.HandleFunc("/api/posts/p1/participants", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	db := filepath.Join(t.TempDir(), "joy.db")

	_, stderr, err := run(t, srv.URL, db, "--token", "sess-1", "posts", "join", "p1")
	assert.Error(t, err)
	assert.Contains(t, stderr, feed.NoticeWriteError)

	out, _, err := run(t, srv.URL, db, "posts")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob: Coffee")
	assert.Contains(t, out, "[0 going]")
}
