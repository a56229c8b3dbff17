package endpoints

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-meetup-service/internal/identity"
	"github.com/EasterCompany/dex-meetup-service/middleware"
	"github.com/EasterCompany/dex-meetup-service/utils"
)

// LoginHandler redirects to the Google consent page.
func LoginHandler(provider *identity.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := provider.LoginURL(r.Context())
		if err != nil {
			if errors.Is(err, identity.ErrNotConfigured) {
				utils.WriteError(w, http.StatusServiceUnavailable, "Sign-in is not configured")
				return
			}
			log.Printf("Auth: login failed: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Sign-in failed")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// CallbackHandler completes sign-in, sets the session cookie and returns the
// session so non-browser clients can use it as a bearer token.
func CallbackHandler(provider *identity.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			utils.WriteError(w, http.StatusUnauthorized, "Sign-in was cancelled")
			return
		}

		sess, err := provider.Callback(r.Context(), q.Get("state"), q.Get("code"))
		if err != nil {
			if errors.Is(err, identity.ErrInvalidState) {
				utils.WriteError(w, http.StatusBadRequest, "Sign-in expired, please try again")
				return
			}
			log.Printf("Auth: callback failed: %v", err)
			utils.WriteError(w, http.StatusBadGateway, "Sign-in failed")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			Expires:  time.Unix(sess.ExpiresAt, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		utils.WriteJSON(w, http.StatusOK, sess)
	}
}

// LogoutHandler ends the current session.
func LogoutHandler(provider *identity.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFrom(r.Context())
		if err := provider.SignOut(r.Context(), sess.ID); err != nil {
			log.Printf("Auth: sign out failed: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Sign-out failed")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the signed-in user.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Please sign in first!")
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
