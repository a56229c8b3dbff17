package joy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Suggester produces up to count suggestion titles, avoiding existing where
// it can.
type Suggester interface {
	Suggest(ctx context.Context, existing []string, count int) ([]string, error)
}

// Store is the local key-value persistence behind a Cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Cache owns one session's day-scoped task list. A cached set for today is
// served without calling the Suggester; anything else is reseeded. Every
// mutation writes the whole set back to the Store.
type Cache struct {
	mu         sync.Mutex
	store      Store
	suggester  Suggester
	key        string
	clock      Clock
	loc        *time.Location
	newID      func() string
	state      State
	set        DailyTaskSet
	message    string
	suggesting bool
}

type Option func(*Cache)

// WithKey overrides CacheKey.
func WithKey(key string) Option { return func(c *Cache) { c.key = key } }

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option { return func(c *Cache) { c.clock = clock } }

// WithLocation sets the time zone that defines "today".
func WithLocation(loc *time.Location) Option { return func(c *Cache) { c.loc = loc } }

func NewCache(store Store, suggester Suggester, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		suggester: suggester,
		key:       CacheKey,
		clock:     RealClock{},
		loc:       time.Local,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the current dateKey.
func (c *Cache) Today() string {
	return DateKey(c.clock.Now().In(c.loc))
}

// View returns a snapshot of the current state.
func (c *Cache) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Cache) viewLocked() View {
	items := make([]Task, len(c.set.Items))
	copy(items, c.set.Items)
	return View{
		State:   c.state,
		Status:  c.state.String(),
		DateKey: c.set.DateKey,
		Items:   items,
		Message: c.message,
	}
}

// Load serves today's persisted set when there is one, otherwise seeds a
// new set from the Suggester.
func (c *Cache) Load(ctx context.Context) (View, error) {
	today := c.Today()

	if set, ok := c.readCached(ctx); ok && !set.Expired(today) && len(set.Items) > 0 {
		c.mu.Lock()
		c.set = set
		c.state = Ready
		c.message = ""
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	return c.seed(ctx, today)
}

// Reset drops the persisted set and seeds unconditionally.
func (c *Cache) Reset(ctx context.Context) (View, error) {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return c.View(), fmt.Errorf("clear daily cache: %w", err)
	}
	c.mu.Lock()
	c.set.Items = nil
	c.mu.Unlock()
	return c.seed(ctx, c.Today())
}

// readCached returns the persisted set. Read or parse failures count as a
// miss.
func (c *Cache) readCached(ctx context.Context) (DailyTaskSet, bool) {
	data, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.Printf("Joy Cache: read %s failed, reseeding: %v", c.key, err)
		return DailyTaskSet{}, false
	}
	if !ok {
		return DailyTaskSet{}, false
	}
	var set DailyTaskSet
	if err := json.Unmarshal(data, &set); err != nil {
		log.Printf("Joy Cache: stale entry under %s, reseeding: %v", c.key, err)
		return DailyTaskSet{}, false
	}
	return set, true
}

func (c *Cache) seed(ctx context.Context, today string) (View, error) {
	c.mu.Lock()
	c.state = Loading
	c.message = ""
	c.mu.Unlock()

	titles, err := c.suggester.Suggest(ctx, []string{}, SeedCount)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = Error
		c.message = err.Error()
		c.set = DailyTaskSet{DateKey: today}
		return c.viewLocked(), err
	}

	items := make([]Task, 0, len(titles))
	for _, title := range titles {
		items = append(items, Task{ID: c.newID(), Title: title})
	}
	c.set = DailyTaskSet{DateKey: today, Items: items}
	c.state = Ready

	if err := c.persistLocked(ctx); err != nil {
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

// Toggle flips the done flag of task id.
func (c *Cache) Toggle(ctx context.Context, id string) (Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.set.Items {
		if c.set.Items[i].ID == id {
			c.set.Items[i].Done = !c.set.Items[i].Done
			return c.set.Items[i], c.persistLocked(ctx)
		}
	}
	return Task{}, ErrTaskNotFound
}

// Add prepends a user-written task. Duplicate titles are allowed.
func (c *Cache) Add(ctx context.Context, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	task := Task{ID: c.newID(), Title: title}
	c.prependLocked(task)
	return task, c.persistLocked(ctx)
}

// SuggestOne asks for one more suggestion that avoids every current title
// and prepends it. Existing tasks are left alone.
func (c *Cache) SuggestOne(ctx context.Context) (Task, error) {
	c.mu.Lock()
	if c.suggesting {
		c.mu.Unlock()
		return Task{}, ErrSuggestionInFlight
	}
	c.suggesting = true
	c.message = ""
	existing := c.set.Titles()
	c.mu.Unlock()

	titles, err := c.suggester.Suggest(ctx, existing, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.suggesting = false

	if err == nil && (len(titles) == 0 || strings.TrimSpace(titles[0]) == "") {
		err = ErrNoSuggestion
	}
	if err != nil {
		c.message = err.Error()
		return Task{}, err
	}

	task := Task{ID: c.newID(), Title: titles[0]}
	c.prependLocked(task)
	return task, c.persistLocked(ctx)
}

func (c *Cache) prependLocked(task Task) {
	if c.set.DateKey == "" {
		c.set.DateKey = c.Today()
	}
	c.set.Items = append([]Task{task}, c.set.Items...)
}

func (c *Cache) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(c.set)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("persist daily cache: %w", err)
	}
	return nil
}
