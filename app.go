package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/EasterCompany/dex-meetup-service/endpoints"
	"github.com/EasterCompany/dex-meetup-service/internal/gemini"
	"github.com/EasterCompany/dex-meetup-service/internal/identity"
	"github.com/EasterCompany/dex-meetup-service/internal/places"
	"github.com/EasterCompany/dex-meetup-service/internal/posts"
	"github.com/EasterCompany/dex-meetup-service/middleware"
	"github.com/EasterCompany/dex-meetup-service/services"
	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// app holds the wired dependencies of the HTTP server.
type app struct {
	cfg       *config.Config
	rdb       *redis.Client
	status    *services.StatusServer
	generator endpoints.SuggestionGenerator
	places    *places.Service
	posts     *posts.Store
	sessions  *identity.SessionStore
	provider  *identity.Provider
}

func newApp(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*app, error) {
	a := &app{
		cfg:    cfg,
		rdb:    rdb,
		status: services.NewStatusServer(ServiceName, utils.GetVersion().Str),
		posts:  posts.NewStore(rdb),
	}
	a.sessions = identity.NewSessionStore(rdb, cfg.SessionDuration())
	a.provider = identity.NewProvider(cfg.OAuth, a.sessions)

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("create generative language client: %w", err)
		}
		gen := gemini.NewGenerator(client, cfg.GeminiModels)
		log.Printf("Suggestion Generator: models %v", gen.Models())
		a.generator = gen
	} else {
		log.Printf("WARNING: %v; /api/gemini will answer 500", gemini.ErrMissingCredential)
	}

	if cfg.MapsAPIKey != "" {
		backend, err := places.NewGoogleBackend(ctx, cfg.MapsAPIKey)
		if err != nil {
			return nil, fmt.Errorf("create places client: %w", err)
		}
		a.places = places.NewService(backend)
	}

	if !cfg.HasOAuth() {
		log.Println("WARNING: Google sign-in is not configured; /auth/login is disabled")
	}
	return a, nil
}

func (a *app) routes() http.Handler {
	r := mux.NewRouter()
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.SessionAuthMiddleware(a.sessions, h)
	}
	joyH := endpoints.NewJoyHandlers(a.rdb, endpoints.GeneratorSuggester{Gen: a.generator})

	// Public
	r.HandleFunc("/service", endpoints.ServiceHandler(a.cfg, a.status)).Methods(http.MethodGet)
	r.HandleFunc("/status", a.status.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/health", a.status.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/gemini", endpoints.GeminiHandler(a.generator, a.status)).Methods(http.MethodPost)
	r.HandleFunc("/api/client-config", endpoints.ClientConfigHandler(a.cfg.MapsAPIKey)).Methods(http.MethodGet)
	r.HandleFunc("/api/places", endpoints.PlacesHandler(a.places)).Methods(http.MethodGet)
	r.HandleFunc("/api/posts", endpoints.ListPostsHandler(a.posts)).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/stream", streaming(endpoints.PostsStreamHandler(a.posts))).Methods(http.MethodGet)
	r.HandleFunc("/api/avatars/{uid}", endpoints.AvatarHandler(a.rdb, a.sessions, &http.Client{Timeout: 10 * time.Second})).Methods(http.MethodGet)

	// Sign-in
	r.HandleFunc("/auth/login", endpoints.LoginHandler(a.provider)).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", endpoints.CallbackHandler(a.provider)).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", auth(endpoints.LogoutHandler(a.provider))).Methods(http.MethodPost)
	r.HandleFunc("/api/me", auth(endpoints.MeHandler)).Methods(http.MethodGet)

	// Signed-in
	r.HandleFunc("/api/posts", auth(endpoints.CreatePostHandler(a.posts))).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/participants", auth(endpoints.JoinPostHandler(a.posts))).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/participants", auth(endpoints.LeavePostHandler(a.posts))).Methods(http.MethodDelete)
	r.HandleFunc("/api/chats", auth(endpoints.ChatsHandler(a.posts))).Methods(http.MethodGet)
	r.HandleFunc("/api/joy", auth(joyH.Get)).Methods(http.MethodGet)
	r.HandleFunc("/api/joy/tasks", auth(joyH.Add)).Methods(http.MethodPost)
	r.HandleFunc("/api/joy/tasks/{id}/toggle", auth(joyH.Toggle)).Methods(http.MethodPost)
	r.HandleFunc("/api/joy/suggest", auth(joyH.Suggest)).Methods(http.MethodPost)
	r.HandleFunc("/api/joy/reset", auth(joyH.Reset)).Methods(http.MethodPost)

	return middleware.CorsMiddleware(a.cfg.AllowedOrigins, r)
}

// streaming lifts the server write deadline for long-lived responses.
func streaming(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			log.Printf("Posts stream: could not clear write deadline: %v", err)
		}
		next(w, r)
	}
}
