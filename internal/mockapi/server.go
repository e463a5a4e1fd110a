// Package mockapi is an in-memory implementation of the WSE HTTP API for
// local development and tests.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/exercise"
)

// DefaultPageSize is used when a list request has no page_size.
const DefaultPageSize = 10

// APIVersion is announced on the health endpoint.
const APIVersion = "v1.3.0"

// Item is one stored word or term.
type Item struct {
	ID        int
	Fields    map[string]string
	Category  string
	Stage     string
	CreatedAt time.Time
}

type collection struct {
	variant exercise.Variant
	items   []*Item
	nextID  int
}

// Server holds users, tokens and one item collection per variant.
type Server struct {
	mu          sync.Mutex
	users       map[string][]byte // username -> bcrypt hash
	tokens      map[string]string // token -> username
	collections []*collection
	cost        int
	now         func() time.Time
	pick        func(n int) int
	router      *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source used for item timestamps and
// period filters.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// WithPicker overrides how an exercise item is chosen among n matches.
func WithPicker(pick func(n int) int) Option {
	return func(s *Server) { s.pick = pick }
}

// New creates a Server serving the given variants.
func New(variants []exercise.Variant, opts ...Option) *Server {
	s := &Server{
		users:  make(map[string][]byte),
		tokens: make(map[string]string),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		pick:   rand.IntN,
	}
	for _, v := range variants {
		s.collections = append(s.collections, &collection{variant: v.WithDefaults(), nextID: 1})
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AddUser registers a user with a bcrypt-hashed password.
func (s *Server) AddUser(username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	s.users[username] = hash
	s.mu.Unlock()
	return nil
}

// AddItem stores an item in the named variant's collection at the
// "study" stage.
func (s *Server) AddItem(variant string, fields map[string]string, category string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(variant)
	if c == nil {
		return Item{}, fmt.Errorf("unknown variant %q", variant)
	}
	return *c.add(fields, category, s.now()), nil
}

// Stage returns an item's progress stage.
func (s *Server) Stage(variant string, id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(variant)
	if c == nil {
		return "", false
	}
	it := c.find(id)
	if it == nil {
		return "", false
	}
	return it.Stage, true
}

func (s *Server) collection(name string) *collection {
	for _, c := range s.collections {
		if c.variant.Name == name {
			return c
		}
	}
	return nil
}

func (c *collection) add(fields map[string]string, category string, now time.Time) *Item {
	it := &Item{
		ID:        c.nextID,
		Fields:    make(map[string]string, len(fields)),
		Category:  category,
		Stage:     exercise.ProgressStages[0],
		CreatedAt: now,
	}
	for k, v := range fields {
		it.Fields[k] = v
	}
	c.nextID++
	c.items = append(c.items, it)
	return it
}

func (c *collection) find(id int) *Item {
	for _, it := range c.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (c *collection) remove(id int) bool {
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// listJSON renders an item the way the list and create endpoints do.
func (c *collection) listJSON(it *Item) api.Item {
	out := api.Item{
		"id":         it.ID,
		"category":   it.Category,
		"progress":   it.Stage,
		"created_at": it.CreatedAt.UTC().Format(time.RFC3339),
	}
	for k, v := range it.Fields {
		out[k] = v
	}
	return out
}

// taskJSON renders an item as an exercise payload: the first list column
// is the question, the second the answer.
func (c *collection) taskJSON(it *Item) map[string]any {
	v := c.variant
	out := map[string]any{v.IDKey: it.ID}
	if len(v.ListColumns) > 0 {
		out[v.QuestionKey] = it.Fields[v.ListColumns[0]]
	}
	if len(v.ListColumns) > 1 {
		out[v.AnswerKey] = it.Fields[v.ListColumns[1]]
	}
	for _, k := range v.ExtraKeys {
		if val, ok := it.Fields[k]; ok {
			out[k] = val
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
