package joy

import (
	"errors"
	"time"
)

// CacheKey is the fixed storage key of the daily task set.
const CacheKey = "joyDailySeed"

// DateKeyLayout renders a calendar day like "Thu Jan 01 2026".
const DateKeyLayout = "Mon Jan 02 2006"

// SeedCount is how many suggestions a fresh day starts with.
const SeedCount = 3

var (
	ErrNoSuggestion       = errors.New("no suggestion returned")
	ErrTaskNotFound       = errors.New("task not found")
	ErrEmptyTitle         = errors.New("task title is empty")
	ErrSuggestionInFlight = errors.New("a suggestion is already being generated")
)

// State is the lifecycle of a Cache.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "uninitialized"
	}
}

// Task is one joy challenge.
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
	Note     string `json:"note,omitempty"`
	Location string `json:"location,omitempty"`
}

// DailyTaskSet is the persisted form of a day's tasks.
type DailyTaskSet struct {
	DateKey string `json:"date"`
	Items   []Task `json:"items"`
}

// Expired reports whether the set belongs to a day other than today.
func (s DailyTaskSet) Expired(today string) bool {
	return s.DateKey != today
}

// Titles returns the titles of all tasks in order.
func (s DailyTaskSet) Titles() []string {
	titles := make([]string, len(s.Items))
	for i, t := range s.Items {
		titles[i] = t.Title
	}
	return titles
}

// DateKey returns the calendar-day identity of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// View is a read-only snapshot of a Cache for rendering.
type View struct {
	State   State  `json:"-"`
	Status  string `json:"state"`
	DateKey string `json:"date"`
	Items   []Task `json:"items"`
	Message string `json:"message,omitempty"`
}
