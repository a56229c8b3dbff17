package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EasterCompany/dex-meetup-service/internal/gemini"
	"github.com/EasterCompany/dex-meetup-service/services"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	got    gemini.SuggestionRequest
	result gemini.SuggestionResult
	err    error
	panic  string
}

func (s *stubGenerator) Generate(_ context.Context, req gemini.SuggestionRequest) (gemini.SuggestionResult, error) {
	s.got = req
	if s.panic != "" {
		panic(s.panic)
	}
	return s.result, s.err
}

func postSuggest(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/gemini", strings.NewReader(body)))
	return rec
}

func TestGemini_Success(t *testing.T) {
	gen := &stubGenerator{result: gemini.SuggestionResult{Items: []string{"a", "b", "c"}, SourceModel: "gemini-2.5-flash"}}
	rec := postSuggest(t, GeminiHandler(gen, nil), `{"existing":["Call a friend"],"count":2,"mood":"sleepy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.SuggestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a", "b"}, resp.Items, "truncated to count")
	assert.Equal(t, "gemini-2.5-flash", resp.Model)

	assert.Equal(t, 2, gen.got.DesiredCount)
	assert.Equal(t, []string{"Call a friend"}, gen.got.ExistingTitles)
	assert.Equal(t, "sleepy", gen.got.MoodHint)
}

func TestGemini_MalformedBodyUsesDefaults(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2]", `{"count":"lots","existing":"nope"}`} {
		gen := &stubGenerator{result: gemini.SuggestionResult{Items: []string{"x", "y"}, SourceModel: "m"}}
		rec := postSuggest(t, GeminiHandler(gen, nil), body)

		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, 1, gen.got.DesiredCount, body)
		assert.Empty(t, gen.got.ExistingTitles, body)
		assert.Contains(t, rec.Body.String(), `"items":["x"]`, body)
	}
}

func TestGemini_NonStringExistingDropped(t *testing.T) {
	gen := &stubGenerator{result: gemini.SuggestionResult{Items: []string{"x"}, SourceModel: "m"}}
	rec := postSuggest(t, GeminiHandler(gen, nil), `{"existing":["Call a friend",7,{"a":1},true,null,"Read outside"],"count":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Call a friend", "Read outside"}, gen.got.ExistingTitles)
	assert.Equal(t, 2, gen.got.DesiredCount)
}

func TestGemini_MissingCredential(t *testing.T) {
	for _, body := range []string{"", `{"count":3}`, "garbage"} {
		rec := postSuggest(t, GeminiHandler(nil, nil), body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
}

func TestGemini_AllModelsFailed(t *testing.T) {
	gen := &stubGenerator{err: &gemini.GenerationError{Last: errors.New("quota exceeded")}}
	status := services.NewStatusServer("svc", "dev")
	rec := postSuggest(t, GeminiHandler(gen, status), `{"count":1}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "All models failed: quota exceeded", resp.Error)
	assert.EqualValues(t, 1, status.Metrics()["suggestions_failed"])
}

func TestGemini_PanicBecomes500(t *testing.T) {
	gen := &stubGenerator{panic: "boom"}
	rec := postSuggest(t, GeminiHandler(gen, nil), `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestGemini_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	GeminiHandler(&stubGenerator{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/gemini", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCoerceCount(t *testing.T) {
	cases := map[string]int{
		`0`:     1,
		`1`:     1,
		`3`:     3,
		`2.7`:   2,
		`9`:     5,
		`-4`:    1,
		`"4"`:   4,
		`"abc"`: 1,
		`null`:  1,
		`true`:  1,
	}
	for raw, want := range cases {
		assert.Equal(t, want, coerceCount(json.RawMessage(raw)), raw)
	}
}
