package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-meetup-service/internal/gemini"
	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/EasterCompany/dex-meetup-service/middleware"
	"github.com/EasterCompany/dex-meetup-service/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// TimezoneHeader lets a client say which calendar day it is in.
const TimezoneHeader = "X-Timezone"

// GeneratorSuggester adapts a SuggestionGenerator to joy.Suggester.
type GeneratorSuggester struct {
	Gen SuggestionGenerator
}

func (s GeneratorSuggester) Suggest(ctx context.Context, existing []string, count int) ([]string, error) {
	if s.Gen == nil {
		return nil, gemini.ErrMissingCredential
	}
	res, err := s.Gen.Generate(ctx, gemini.SuggestionRequest{DesiredCount: count, ExistingTitles: existing})
	if err != nil {
		var genErr *gemini.GenerationError
		if errors.As(err, &genErr) && genErr.Last != nil {
			return nil, errors.New("All models failed: " + genErr.Last.Error())
		}
		return nil, err
	}
	return res.Items, nil
}

// JoyHandlers serve the signed-in user's daily task set, persisted in Redis.
type JoyHandlers struct {
	rdb       *redis.Client
	suggester joy.Suggester
	clock     joy.Clock
}

func NewJoyHandlers(rdb *redis.Client, suggester joy.Suggester) *JoyHandlers {
	return &JoyHandlers{rdb: rdb, suggester: suggester, clock: joy.RealClock{}}
}

func (h *JoyHandlers) cacheFor(r *http.Request) *joy.Cache {
	user, _ := middleware.UserFrom(r.Context())
	loc := time.Local
	if tz := r.Header.Get(TimezoneHeader); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return joy.NewCache(joy.NewUserRedisStore(h.rdb, user.UID), h.suggester,
		joy.WithClock(h.clock), joy.WithLocation(loc))
}

// Get loads today's set, seeding it on a miss.
func (h *JoyHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.cacheFor(r).Load(r.Context())
	if err != nil {
		writeJoyError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// Add prepends a task from {"title": "..."}.
func (h *JoyHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.mutate(w, r, func(c *joy.Cache) error {
		_, err := c.Add(r.Context(), body.Title)
		return err
	})
}

// Toggle flips the done flag of {id}.
func (h *JoyHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.mutate(w, r, func(c *joy.Cache) error {
		_, err := c.Toggle(r.Context(), id)
		return err
	})
}

// Suggest prepends one AI suggestion.
func (h *JoyHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *joy.Cache) error {
		_, err := c.SuggestOne(r.Context())
		return err
	})
}

// Reset discards today's set and seeds a new one.
func (h *JoyHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.cacheFor(r).Reset(r.Context())
	if err != nil {
		writeJoyError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

func (h *JoyHandlers) mutate(w http.ResponseWriter, r *http.Request, fn func(*joy.Cache) error) {
	cache := h.cacheFor(r)
	if _, err := cache.Load(r.Context()); err != nil {
		writeJoyError(w, err)
		return
	}
	if err := fn(cache); err != nil {
		writeJoyError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cache.View())
}

func writeJoyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, joy.ErrTaskNotFound):
		utils.WriteError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, joy.ErrEmptyTitle):
		utils.WriteError(w, http.StatusBadRequest, "Task title is required")
	case errors.Is(err, joy.ErrSuggestionInFlight):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gemini.ErrMissingCredential):
		utils.WriteError(w, http.StatusInternalServerError, "Missing GOOGLE_API_KEY or GEMINI_API_KEY")
	default:
		log.Printf("Joy: %v", err)
		utils.WriteError(w, http.StatusBadGateway, err.Error())
	}
}
