package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/gemini"
	"github.com/EasterCompany/dex-meetup-service/services"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/EasterCompany/dex-meetup-service/utils"
)

const maxSuggestBody = 64 << 10

// SuggestionGenerator is the part of gemini.Generator the proxy needs.
type SuggestionGenerator interface {
	Generate(ctx context.Context, req gemini.SuggestionRequest) (gemini.SuggestionResult, error)
}

// GeminiHandler serves POST /api/gemini. A nil generator means no API key is
// configured and every request fails with 500. status may be nil.
func GeminiHandler(gen SuggestionGenerator, status *services.StatusServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status != nil {
			status.IncrementReceived()
		}
		code := serveSuggestion(w, r, gen)
		if status == nil {
			return
		}
		if code == http.StatusOK {
			status.IncrementServed()
		} else {
			status.IncrementFailed()
		}
	}
}

func serveSuggestion(w http.ResponseWriter, r *http.Request, gen SuggestionGenerator) (code int) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Suggestion Proxy: recovered: %v", rec)
			code = http.StatusInternalServerError
			utils.WriteError(w, code, fmt.Sprint(rec))
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return http.StatusMethodNotAllowed
	}
	if gen == nil {
		utils.WriteError(w, http.StatusInternalServerError, "Missing GOOGLE_API_KEY or GEMINI_API_KEY")
		return http.StatusInternalServerError
	}

	body, _ := io.ReadAll(io.LimitReader(r.Body, maxSuggestBody))
	req := decodeSuggestRequest(body)

	result, err := gen.Generate(r.Context(), gemini.SuggestionRequest{
		DesiredCount:   req.Count,
		ExistingTitles: req.Existing,
		MoodHint:       req.Mood,
	})
	if err != nil {
		var genErr *gemini.GenerationError
		if errors.As(err, &genErr) && genErr.Last != nil {
			utils.WriteError(w, http.StatusBadGateway, "All models failed: "+genErr.Last.Error())
			return http.StatusBadGateway
		}
		utils.WriteError(w, http.StatusBadGateway, "All models failed: "+err.Error())
		return http.StatusBadGateway
	}

	items := result.Items
	if len(items) > req.Count {
		items = items[:req.Count]
	}
	utils.WriteJSON(w, http.StatusOK, types.SuggestResponse{Items: items, Model: result.SourceModel})
	return http.StatusOK
}

// decodeSuggestRequest never fails: anything it cannot read falls back to
// {existing: [], count: 1}.
func decodeSuggestRequest(body []byte) types.SuggestRequest {
	req := types.SuggestRequest{Existing: []string{}, Count: 1}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req
	}

	if raw, ok := fields["existing"]; ok {
		var list []interface{}
		if json.Unmarshal(raw, &list) == nil {
			for _, v := range list {
				if title, ok := v.(string); ok {
					req.Existing = append(req.Existing, title)
				}
			}
		}
	}
	if raw, ok := fields["count"]; ok {
		req.Count = coerceCount(raw)
	}
	if raw, ok := fields["mood"]; ok {
		var mood string
		if json.Unmarshal(raw, &mood) == nil {
			req.Mood = strings.TrimSpace(mood)
		}
	}
	return req
}

// coerceCount accepts a number or numeric string. Zero, missing and
// unparseable values mean 1; the result is clamped to [1,5].
func coerceCount(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 1
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 1
		}
		n = f
	}
	if n == 0 || math.IsNaN(n) {
		return 1
	}
	if n > gemini.MaxCount {
		return gemini.MaxCount
	}
	return gemini.ClampCount(int(math.Floor(n)))
}
