package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/auth"
	"github.com/wselearn/wse/internal/config"
	ex "github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	exscreen "github.com/wselearn/wse/internal/screens/exercise"
	"github.com/wselearn/wse/internal/screens/history"
	"github.com/wselearn/wse/internal/screens/home"
	"github.com/wselearn/wse/internal/screens/list"
	"github.com/wselearn/wse/internal/screens/login"
	"github.com/wselearn/wse/internal/screens/params"
	"github.com/wselearn/wse/internal/screens/welcome"
	"github.com/wselearn/wse/internal/store"
	"github.com/wselearn/wse/internal/ui/layout"
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Config *config.Config
	Client *api.Client
	Auth   *auth.Manager
	// Store is optional; without it nothing is remembered locally.
	Store *store.Store
	// SkipWelcome opens the home screen directly.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	auth   *auth.Manager
	width  int
	height int
}

// newAppModel creates a new AppModel with every screen registered.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(opts.Auth, opts.Config.Variants)
	}

	var initial screen.Screen
	if opts.SkipWelcome {
		initial = homeFactory()
	} else {
		initial = welcome.New(homeFactory, opts.Client.Health)
	}

	r := router.New(initial)
	r.SetRegistry(buildRegistry(opts))
	return AppModel{router: r, auth: opts.Auth}
}

func buildRegistry(opts Options) *router.Registry {
	reg := router.NewRegistry()
	cfg := opts.Config

	var (
		events     store.EventRepo
		paramsRepo store.ParamsRepo
		progress   ex.ProgressLog
	)
	if opts.Store != nil {
		events = opts.Store.EventRepo()
		paramsRepo = opts.Store.ParamsRepo()
		progress = events
	}

	reg.Register(home.LoginScreen, func() screen.Screen {
		return login.New(opts.Auth)
	})

	names := make([]string, 0, len(cfg.Variants))
	for _, v := range cfg.Variants {
		names = append(names, v.Name)
	}
	reg.Register(home.HistoryScreen, func() screen.Screen {
		return history.New(events, names)
	})

	for _, v := range cfg.Variants {
		remote := ex.NewRemote(opts.Client, v)
		start := func(p ex.Params) screen.Screen {
			return exscreen.New(exscreen.Options{
				Variant:  v,
				Params:   p,
				API:      remote,
				Progress: progress,
				Delay:    cfg.Exercise.Delay,
				Auth:     opts.Auth,
			})
		}
		reg.Register(home.ParamsScreen(v.Name), func() screen.Screen {
			return params.New(v, paramsRepo, start)
		})
		reg.Register(home.ListScreen(v.Name), func() screen.Screen {
			return list.New(v, opts.Client, opts.Auth, cfg.Exercise.PageSize)
		})
	}
	return reg
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Shutdown()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}

	case router.UnknownScreenMsg:
		fmt.Fprintf(os.Stderr, "Warning: %v\n", msg.Err)
		return m, nil
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var user string
	if m.auth != nil && m.auth.LoggedIn() {
		user = m.auth.Username()
	}
	header := layout.RenderHeader(title, user, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	model := newAppModel(opts)
	p := tea.NewProgram(model)
	_, err := p.Run()
	model.router.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
