package login

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/router"
)

type fakeAuth struct {
	username, password string
	err                error
}

func (f *fakeAuth) Login(_ context.Context, username, password string) error {
	f.username, f.password = username, password
	return f.err
}

func typeText(s *LoginScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func submitForm(t *testing.T, s *LoginScreen) tea.Msg {
	t.Helper()
	s.Init()
	typeText(s, "ann")
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	typeText(s, "secret")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	return cmd()
}

func TestSubmitSuccessPops(t *testing.T) {
	auth := &fakeAuth{}
	s := New(auth)

	msg := submitForm(t, s)
	assert.Equal(t, "ann", auth.username)
	assert.Equal(t, "secret", auth.password)

	_, cmd := s.Update(msg)
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestSubmitFailureShowsError(t *testing.T) {
	auth := &fakeAuth{err: &api.ErrStatus{Code: 400}}
	s := New(auth)

	msg := submitForm(t, s)
	_, cmd := s.Update(msg)
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(80, 24), "Unable to sign in")
}

func TestPasswordIsMasked(t *testing.T) {
	s := New(&fakeAuth{err: errors.New("offline")})
	s.Init()
	typeText(s, "ann")
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	typeText(s, "hunter2")

	view := s.View(80, 24)
	assert.True(t, strings.Contains(view, "ann"))
	assert.False(t, strings.Contains(view, "hunter2"))
}
