// Package apiclient talks to the meetup service over HTTP.
package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EasterCompany/dex-meetup-service/types"
)

const DefaultURL = "http://127.0.0.1:8300"

// APIError is a non-2xx response. Message is the server's "error" field
// when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	BaseURL string
	Token   string
	// Timezone is an IANA name sent so the server computes "today" in the
	// caller's zone.
	Timezone string
	HTTP     *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.Timezone != "" {
		req.Header.Set(timezoneHeader, c.Timezone)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing %s response body: %v", path, err)
		}
	}()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

const timezoneHeader = "X-Timezone"

func decodeError(status int, data []byte) error {
	var body types.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return &APIError{Status: status, Message: body.Error}
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

// Suggest calls the suggestion proxy. It satisfies joy.Suggester.
func (c *Client) Suggest(ctx context.Context, existing []string, count int) ([]string, error) {
	if existing == nil {
		existing = []string{}
	}
	var resp types.SuggestResponse
	err := c.do(ctx, http.MethodPost, "/api/gemini", types.SuggestRequest{Existing: existing, Count: count}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (types.User, error) {
	var u types.User
	return u, c.do(ctx, http.MethodGet, "/api/me", nil, &u)
}

// SignOut ends the session behind Token.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) ListPosts(ctx context.Context) ([]types.Post, error) {
	var list []types.Post
	return list, c.do(ctx, http.MethodGet, "/api/posts", nil, &list)
}

func (c *Client) CreatePost(ctx context.Context, req types.CreatePostRequest) (types.Post, error) {
	var p types.Post
	return p, c.do(ctx, http.MethodPost, "/api/posts", req, &p)
}

// Join and Leave satisfy feed.Remote.
func (c *Client) Join(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/participants", nil, nil)
}

func (c *Client) Leave(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID)+"/participants", nil, nil)
}

func (c *Client) Chats(ctx context.Context) ([]types.Chat, error) {
	var chats []types.Chat
	return chats, c.do(ctx, http.MethodGet, "/api/chats", nil, &chats)
}

// Places runs a nearby search around lat/lng.
func (c *Client) Places(ctx context.Context, filter string, lat, lng float64) ([]types.Place, error) {
	q := url.Values{}
	q.Set("filter", filter)
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	var list []types.Place
	return list, c.do(ctx, http.MethodGet, "/api/places?"+q.Encode(), nil, &list)
}

func (c *Client) ClientConfig(ctx context.Context) (types.ClientConfig, error) {
	var cfg types.ClientConfig
	return cfg, c.do(ctx, http.MethodGet, "/api/client-config", nil, &cfg)
}

// StreamPosts follows the live timeline. The channel closes when ctx ends
// or the server drops the stream.
func (c *Client) StreamPosts(ctx context.Context) (<-chan []types.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/posts/stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any request timeout.
	stream := &http.Client{Transport: c.HTTP.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, decodeError(resp.StatusCode, data)
	}

	out := make(chan []types.Post)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64<<10), 4<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var list []types.Post
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &list); err != nil {
				log.Printf("Posts stream: bad snapshot: %v", err)
				continue
			}
			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			log.Printf("Posts stream: %v", err)
		}
	}()
	return out, nil
}
