package endpoints

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-meetup-service/internal/identity"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

const (
	avatarKeyPrefix = "avatars:"
	avatarTTL       = 24 * time.Hour
)

// UserLookup resolves a stored user profile.
type UserLookup interface {
	GetUser(ctx context.Context, uid string) (*types.User, error)
}

// AvatarHandler serves a square JPEG thumbnail of the user's profile photo.
// Thumbnails are cached in Redis.
func AvatarHandler(rdb *redis.Client, users UserLookup, client *http.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := mux.Vars(r)["uid"]
		ctx := r.Context()

		data, err := rdb.Get(ctx, avatarKeyPrefix+uid).Bytes()
		if err == nil {
			writeJPEG(w, data)
			return
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("Avatars: cache read for %s failed: %v", uid, err)
		}

		user, err := users.GetUser(ctx, uid)
		if err != nil {
			if errors.Is(err, identity.ErrUnknownUser) {
				http.NotFound(w, r)
				return
			}
			log.Printf("Avatars: lookup %s failed: %v", uid, err)
			http.Error(w, "Failed to load user", http.StatusInternalServerError)
			return
		}
		if user.PhotoURL == "" {
			http.NotFound(w, r)
			return
		}

		data, err = utils.DownloadAvatar(ctx, client, user.PhotoURL, utils.AvatarSize)
		if err != nil {
			log.Printf("Avatars: fetch for %s failed: %v", uid, err)
			http.Error(w, "Failed to fetch avatar", http.StatusBadGateway)
			return
		}
		if err := rdb.Set(ctx, avatarKeyPrefix+uid, data, avatarTTL).Err(); err != nil {
			log.Printf("Avatars: cache write for %s failed: %v", uid, err)
		}
		writeJPEG(w, data)
	}
}

func writeJPEG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}
