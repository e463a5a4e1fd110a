package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/wselearn/wse/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" {
		t.Errorf("expected active 'third', got %q", r.Active().Title())
	}
}

// focusScreen records Focus/Blur calls.
type focusScreen struct {
	stubScreen
	events []string
}

func (s *focusScreen) Focus() tea.Cmd {
	s.events = append(s.events, "focus")
	return nil
}

func (s *focusScreen) Blur() {
	s.events = append(s.events, "blur")
}

func TestFocusFollowsStack(t *testing.T) {
	s1 := &focusScreen{stubScreen: stubScreen{title: "first"}}
	r := New(s1)
	r.Init()

	s2 := &focusScreen{stubScreen: stubScreen{title: "second"}}
	r.Push(s2)
	r.Pop()

	want1 := []string{"focus", "blur", "focus"}
	if len(s1.events) != len(want1) {
		t.Fatalf("first: got %v, want %v", s1.events, want1)
	}
	for i := range want1 {
		if s1.events[i] != want1[i] {
			t.Fatalf("first: got %v, want %v", s1.events, want1)
		}
	}
	if len(s2.events) != 2 || s2.events[0] != "focus" || s2.events[1] != "blur" {
		t.Errorf("second: got %v, want [focus blur]", s2.events)
	}
}

func TestReplaceBlursOld(t *testing.T) {
	s1 := &focusScreen{stubScreen: stubScreen{title: "first"}}
	r := New(s1)

	s2 := &focusScreen{stubScreen: stubScreen{title: "second"}}
	r.Replace(s2)

	if len(s1.events) != 1 || s1.events[0] != "blur" {
		t.Errorf("expected old screen blurred, got %v", s1.events)
	}
	if len(s2.events) != 1 || s2.events[0] != "focus" {
		t.Errorf("expected new screen focused, got %v", s2.events)
	}
}

func TestShowScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	reg := NewRegistry()
	reg.Register("list", func() screen.Screen { return &stubScreen{title: "list"} })
	r.SetRegistry(reg)

	r.Update(ShowScreenMsg{Name: "list"})

	if r.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "list" {
		t.Errorf("expected active 'list', got %q", r.Active().Title())
	}
}

func TestShowUnknownScreen(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	cmd := r.Update(ShowScreenMsg{Name: "nope"})
	if cmd == nil {
		t.Fatal("expected a command reporting the unknown screen")
	}
	msg, ok := cmd().(UnknownScreenMsg)
	if !ok || msg.Err == nil {
		t.Fatalf("expected UnknownScreenMsg, got %#v", msg)
	}
	if r.Depth() != 1 {
		t.Errorf("stack must not change, depth %d", r.Depth())
	}
}
