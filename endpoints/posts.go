package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/EasterCompany/dex-meetup-service/internal/posts"
	"github.com/EasterCompany/dex-meetup-service/middleware"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/gorilla/mux"
)

// ListPostsHandler returns posts newest first. ?limit= caps the count.
func ListPostsHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := posts.DefaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := store.List(r.Context(), limit)
		if err != nil {
			log.Printf("Posts: list failed: %v", err)
			http.Error(w, "Failed to list posts", http.StatusInternalServerError)
			return
		}
		utils.WriteJSON(w, http.StatusOK, list)
	}
}

// CreatePostHandler creates a post authored by the signed-in user.
func CreatePostHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFrom(r.Context())

		var req types.CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		post, err := store.Create(r.Context(), user, req)
		if err != nil {
			writePostError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, post)
	}
}

// JoinPostHandler adds the signed-in user to the post and upserts the chat
// with its author.
func JoinPostHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFrom(r.Context())
		post, err := store.Join(r.Context(), mux.Vars(r)["id"], user)
		if err != nil {
			writePostError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, post)
	}
}

// LeavePostHandler removes the signed-in user from the post.
func LeavePostHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFrom(r.Context())
		post, err := store.Leave(r.Context(), mux.Vars(r)["id"], user)
		if err != nil {
			writePostError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, post)
	}
}

// ChatsHandler lists the signed-in user's chats.
func ChatsHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFrom(r.Context())
		chats, err := store.ChatsForUser(r.Context(), user.UID)
		if err != nil {
			log.Printf("Posts: chats for %s failed: %v", user.UID, err)
			http.Error(w, "Failed to list chats", http.StatusInternalServerError)
			return
		}
		utils.WriteJSON(w, http.StatusOK, chats)
	}
}

// PostsStreamHandler relays timeline snapshots as server-sent events. Each
// event's data is the full ordered post list.
func PostsStreamHandler(store *posts.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming not supported", http.StatusInternalServerError)
			return
		}

		snapshots, err := store.Subscribe(r.Context(), posts.DefaultListLimit)
		if err != nil {
			log.Printf("Posts: subscribe failed: %v", err)
			http.Error(w, "Failed to subscribe", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for list := range snapshots {
			data, err := json.Marshal(list)
			if err != nil {
				log.Printf("Posts: encode snapshot: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: posts\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, posts.ErrOwnPost):
		utils.WriteError(w, http.StatusForbidden, "You can't join your own post")
	case errors.Is(err, posts.ErrNoText):
		utils.WriteError(w, http.StatusBadRequest, "Post text is required")
	default:
		log.Printf("Posts: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Could not update. Please try again.")
	}
}
