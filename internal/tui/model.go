// Package tui is the terminal client: today's joy challenges and the post
// feed.
package tui

import (
	"context"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/feed"
	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Screen string

const (
	ScreenJoy  Screen = "Joy"
	ScreenFeed Screen = "Feed"
)

// PostsSource loads the timeline.
type PostsSource interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

// Messages produced by commands.
type (
	JoyLoadedMsg struct {
		View joy.View
		Err  error
	}
	JoyChangedMsg struct{ Err error }
	PostsMsg      struct {
		Posts []types.Post
		Err   error
	}
	FeedDoneMsg struct {
		Err    error
		Notice string
	}
)

type Model struct {
	Screen     Screen
	Joy        joy.View
	JoyCursor  int
	FeedCursor int
	Adding     bool
	Busy       bool
	Status     StatusBar
	Quitting   bool

	cache   *joy.Cache
	feed    *feed.Feed
	posts   PostsSource
	user    *types.User
	input   textinput.Model
	spinner spinner.Model
}

// NewModel wires the screens. user may be nil when signed out; the feed is
// then read-only.
func NewModel(cache *joy.Cache, remote feed.Remote, posts PostsSource, user *types.User) Model {
	in := textinput.New()
	in.Placeholder = "Add your own challenge"
	in.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Notices are derived per completion in updateFeedKeys.
	f := feed.New(remote, nil)
	f.SetUser(user)

	return Model{
		Screen:  ScreenJoy,
		cache:   cache,
		feed:    f,
		posts:   posts,
		user:    user,
		input:   in,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadJoy(false), m.refreshPosts(), m.spinner.Tick)
}

func (m Model) loadJoy(reset bool) tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		var (
			v   joy.View
			err error
		)
		if reset {
			v, err = cache.Reset(context.Background())
		} else {
			v, err = cache.Load(context.Background())
		}
		return JoyLoadedMsg{View: v, Err: err}
	}
}

func (m Model) refreshPosts() tea.Cmd {
	src := m.posts
	return func() tea.Msg {
		list, err := src.ListPosts(context.Background())
		return PostsMsg{Posts: list, Err: err}
	}
}

func (m Model) joyAction(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return JoyChangedMsg{Err: fn(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JoyLoadedMsg:
		m.Busy = false
		m.Joy = msg.View
		m.clampCursors()
		if msg.Err != nil {
			m.setError(msg.Err.Error())
		}
		return m, nil

	case JoyChangedMsg:
		m.Busy = false
		m.Joy = m.cache.View()
		m.clampCursors()
		if msg.Err != nil {
			m.setError(msg.Err.Error())
		}
		return m, nil

	case PostsMsg:
		if msg.Err != nil {
			m.setError(msg.Err.Error())
			return m, nil
		}
		m.feed.Replace(msg.Posts)
		m.clampCursors()
		return m, nil

	case FeedDoneMsg:
		if msg.Notice != "" {
			m.Status = StatusBar{Text: msg.Notice, IsError: msg.Err != nil}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Adding {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Adding = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		m.Adding = false
		m.input.Blur()
		m.input.SetValue("")
		if title == "" {
			return m, nil
		}
		cache := m.cache
		return m, m.joyAction(func(ctx context.Context) error {
			_, err := cache.Add(ctx, title)
			return err
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.Quitting = true
		return m, tea.Quit
	case "1":
		m.Screen = ScreenJoy
		return m, nil
	case "2":
		m.Screen = ScreenFeed
		return m, nil
	case "tab":
		if m.Screen == ScreenJoy {
			m.Screen = ScreenFeed
		} else {
			m.Screen = ScreenJoy
		}
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	}

	if m.Screen == ScreenFeed {
		return m.updateFeedKeys(key)
	}
	return m.updateJoyKeys(key)
}

func (m Model) updateJoyKeys(key string) (tea.Model, tea.Cmd) {
	cache := m.cache
	switch key {
	case " ", "enter", "x":
		if m.JoyCursor >= len(m.Joy.Items) {
			return m, nil
		}
		id := m.Joy.Items[m.JoyCursor].ID
		return m, m.joyAction(func(ctx context.Context) error {
			_, err := cache.Toggle(ctx, id)
			return err
		})
	case "a":
		m.Adding = true
		m.input.Focus()
		return m, textinput.Blink
	case "s":
		m.Busy = true
		m.Status = StatusBar{Text: "Asking for a new idea..."}
		return m, m.joyAction(func(ctx context.Context) error {
			_, err := cache.SuggestOne(ctx)
			return err
		})
	case "r":
		m.Busy = true
		m.Status = StatusBar{Text: "Starting today over..."}
		return m, m.loadJoy(true)
	}
	return m, nil
}

func (m Model) updateFeedKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "R":
		return m, m.refreshPosts()
	case " ", "enter":
		posts := m.feed.Posts()
		if m.FeedCursor >= len(posts) {
			return m, nil
		}
		// The participant list changes here, before the remote call returns.
		done := m.feed.ToggleJoinAsync(context.Background(), posts[m.FeedCursor].ID)
		return m, func() tea.Msg {
			err := <-done
			return FeedDoneMsg{Err: err, Notice: feed.NoticeFor(err)}
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.Screen == ScreenFeed {
		m.FeedCursor += delta
	} else {
		m.JoyCursor += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	clamp := func(c, n int) int {
		if c >= n {
			c = n - 1
		}
		if c < 0 {
			c = 0
		}
		return c
	}
	m.JoyCursor = clamp(m.JoyCursor, len(m.Joy.Items))
	m.FeedCursor = clamp(m.FeedCursor, len(m.feed.Posts()))
}

func (m *Model) setError(text string) {
	m.Status = StatusBar{Text: text, IsError: true}
}

// Posts returns the feed as currently shown.
func (m Model) Posts() []types.Post {
	return m.feed.Posts()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	header := headerStyle.Render("meetup")
	if m.Screen == ScreenJoy && m.Joy.DateKey != "" {
		header += footerStyle.Render("  " + m.Joy.DateKey)
	}

	var body string
	if m.Screen == ScreenFeed {
		body = renderFeed(m.feed.Posts(), m.user, m.FeedCursor)
	} else {
		body = renderJoy(m.Joy, m.JoyCursor)
		if m.Adding {
			body += "\n\n" + m.input.View()
		}
	}

	status := statusStyle.Render(m.Status.Text)
	if m.Status.IsError {
		status = errorStyle.Render(m.Status.Text)
	}
	if m.Busy || m.Joy.State == joy.Loading {
		status = m.spinner.View() + " " + status
	}

	footer := "1/2 switch · j/k move · space toggle · a add · s suggest · r reset · q quit"
	if m.Screen == ScreenFeed {
		footer = "1/2 switch · j/k move · enter join/leave · R refresh · q quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", renderTabs(m.Screen)),
		panelStyle.Render(body),
		status,
		footerStyle.Render(footer),
	)
}
