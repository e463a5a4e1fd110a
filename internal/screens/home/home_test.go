package home

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
)

type fakeSession struct {
	user      string
	logoutErr error
}

func (f *fakeSession) LoggedIn() bool   { return f.user != "" }
func (f *fakeSession) Username() string { return f.user }
func (f *fakeSession) Logout(context.Context) error {
	f.user = ""
	return f.logoutErr
}

func variants() []exercise.Variant {
	return []exercise.Variant{exercise.ForeignWords(), exercise.GlossaryTerms()}
}

func press(h *HomeScreen, key tea.KeyPressMsg) tea.Cmd {
	_, cmd := h.Update(key)
	return cmd
}

func TestLoggedOutSelectsHistory(t *testing.T) {
	h := New(&fakeSession{}, variants())

	item, ok := h.menu.Current()
	require.True(t, ok)
	assert.Equal(t, "History", item.Label)
	assert.Contains(t, h.View(80, 30), "Sign in")
}

func TestLoggedInOpensParams(t *testing.T) {
	h := New(&fakeSession{user: "ann"}, variants())

	cmd := press(h, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	show, ok := cmd().(router.ShowScreenMsg)
	require.True(t, ok)
	assert.Equal(t, ParamsScreen("foreign"), show.Name)

	press(h, tea.KeyPressMsg{Code: tea.KeyDown})
	press(h, tea.KeyPressMsg{Code: tea.KeyDown})
	cmd = press(h, tea.KeyPressMsg{Code: tea.KeyEnter})
	show, ok = cmd().(router.ShowScreenMsg)
	require.True(t, ok)
	assert.Equal(t, ListScreen("foreign"), show.Name)
}

func TestFocusRebuildsAfterLogin(t *testing.T) {
	sess := &fakeSession{}
	h := New(sess, variants())
	assert.True(t, h.menu.Items[0].Disabled)

	sess.user = "ann"
	h.Focus()
	assert.False(t, h.menu.Items[0].Disabled)
	assert.Contains(t, h.View(80, 30), "Welcome back, ann.")
}

func TestLogoutFailureShowsDialog(t *testing.T) {
	sess := &fakeSession{user: "ann", logoutErr: errors.New("offline")}
	h := New(sess, variants())

	_, cmd := h.Update(h.logout()())
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)
	assert.False(t, h.loggedIn)
}
