package router

import (
	"fmt"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/wselearn/wse/internal/screen"
)

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg requests the router to pop the current screen off the stack.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen for a new one.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// ShowScreenMsg pushes the screen registered under Name.
type ShowScreenMsg struct {
	Name string
}

// UnknownScreenMsg is emitted when a ShowScreenMsg names no registered
// screen.
type UnknownScreenMsg struct {
	Err error
}

// Registry maps screen names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]screen.Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]screen.Factory)}
}

// Register binds name to f, replacing any earlier binding.
func (r *Registry) Register(name string, f screen.Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

// Lookup returns the factory bound to name.
func (r *Registry) Lookup(name string) (screen.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Router manages a stack of screens.
type Router struct {
	stack    []screen.Screen
	registry *Registry
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{
		stack:    []screen.Screen{initial},
		registry: NewRegistry(),
	}
}

// SetRegistry replaces the registry used to resolve ShowScreenMsg.
func (r *Router) SetRegistry(reg *Registry) {
	r.registry = reg
}

// Registry returns the router's registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Init initializes and focuses the initial screen.
func (r *Router) Init() tea.Cmd {
	active := r.Active()
	if active == nil {
		return nil
	}
	return tea.Batch(active.Init(), focus(active))
}

// Push adds a screen on top of the stack and calls its Init().
func (r *Router) Push(s screen.Screen) tea.Cmd {
	blur(r.Active())
	r.stack = append(r.stack, s)
	return tea.Batch(s.Init(), focus(s))
}

// Pop removes the top screen. No-op if stack depth would become 0.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	blur(r.Active())
	r.stack = r.stack[:len(r.stack)-1]
	return focus(r.Active())
}

// Replace swaps the top screen for s, keeping the stack depth.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	blur(r.Active())
	if len(r.stack) == 0 {
		r.stack = append(r.stack, s)
	} else {
		r.stack[len(r.stack)-1] = s
	}
	return tea.Batch(s.Init(), focus(s))
}

// Show pushes the screen registered under name.
func (r *Router) Show(name string) tea.Cmd {
	f, ok := r.registry.Lookup(name)
	if !ok {
		err := fmt.Errorf("unknown screen %q", name)
		return func() tea.Msg { return UnknownScreenMsg{Err: err} }
	}
	return r.Push(f())
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update forwards a message to the active screen and handles navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case ShowScreenMsg:
		return r.Show(msg.Name)
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// Shutdown blurs the active screen so background work stops.
func (r *Router) Shutdown() {
	blur(r.Active())
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}

func focus(s screen.Screen) tea.Cmd {
	if f, ok := s.(screen.Focusable); ok {
		return f.Focus()
	}
	return nil
}

func blur(s screen.Screen) {
	if f, ok := s.(screen.Focusable); ok {
		f.Blur()
	}
}

// Push returns a command that pushes s.
func Push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Pop returns a command that pops the active screen.
func Pop() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

// Replace returns a command that replaces the active screen with s.
func Replace(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

// Show returns a command that shows the screen registered under name.
func Show(name string) tea.Cmd {
	return func() tea.Msg { return ShowScreenMsg{Name: name} }
}
