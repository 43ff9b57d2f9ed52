package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/navigation"
	"github.com/hospital-is/hisctl/internal/session"
)

// Session is the part of the session store the UI drives.
type Session interface {
	Login(ctx context.Context, email, password string) (*session.User, error)
	Signup(ctx context.Context, req session.SignupRequest) (*session.User, error)
	Logout(ctx context.Context) error
	Snapshot() session.Snapshot
}

// Navigator moves the location and reports the current resolution.
type Navigator interface {
	Navigate(path string)
	Current() navigation.Resolution
}

// Fetcher loads view data from the backend.
type Fetcher interface {
	Get(ctx context.Context, path string) (*gateway.Response, error)
}

// Model is the bubbletea model for the hospital console.
type Model struct {
	session Session
	nav     Navigator
	fetcher Fetcher

	res navigation.Resolution

	// Auth forms
	login      form
	signup     form
	submitting bool
	formErr    string
	// expiredNotice is shown on the login view after a session expiry and
	// cleared once the user submits.
	expiredNotice bool

	// View data
	seq      int
	cancel   context.CancelFunc
	loading  bool
	loadPath string
	dataset  Dataset
	table    table.Model
	hasTable bool
	loadErr  string

	// Go-to prompt
	goTo       textinput.Model
	goToActive bool

	keys     keyMap
	formKeys formKeyMap
	help     help.Model
	spinner  spinner.Model

	width    int
	height   int
	quitting bool

	styles Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

// NewModel creates the console model.
func NewModel(sess Session, nav Navigator, fetcher Fetcher) Model {
	goTo := textinput.New()
	goTo.Prompt = "→ "
	goTo.Placeholder = "/lab"
	goTo.CharLimit = 256

	return Model{
		session:  sess,
		nav:      nav,
		fetcher:  fetcher,
		login:    newLoginForm(),
		signup:   newSignupForm(),
		goTo:     goTo,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:   DefaultStyles(),
	}
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33")). // Blue
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("33")).
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33")),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	nav := m.nav
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		func() tea.Msg { return ResolutionMsg{Resolution: nav.Current()} },
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.hasTable {
			m.table = m.dataset.Table(m.tableHeight())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case ResolutionMsg:
		return m.applyResolution(msg.Resolution)

	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.formErr = authMessage(msg.err, msg.signup)
			return m, nil
		}
		// The controller moves a signed-in user off the auth views.
		m.formErr = ""
		m.login = newLoginForm()
		m.signup = newSignupForm()
		return m, nil

	case logoutMsg:
		if msg.err != nil {
			m.loadErr = userMessage(msg.err)
		}
		return m, nil

	case dataLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.cancel = nil
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return m, nil
			}
			m.loadErr = userMessage(msg.err)
			m.hasTable = false
			return m, nil
		}
		m.loadErr = ""
		m.dataset = msg.data
		m.table = msg.data.Table(m.tableHeight())
		m.hasTable = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// applyResolution switches to a new resolution. Arriving at a different
// location cancels any in-flight load from the previous one. A resolution
// older than the one on screen is dropped.
func (m Model) applyResolution(res navigation.Resolution) (tea.Model, tea.Cmd) {
	if res.Seq < m.res.Seq {
		return m, nil
	}
	prev := m.res
	m.res = res

	moved := !prev.Location.Equal(res.Location) || prev.View != res.View || prev.Outcome != res.Outcome
	if !moved {
		return m, nil
	}

	m.stopLoad()
	m.loadErr = ""
	m.hasTable = false
	m.goToActive = false

	switch res.View {
	case navigation.ViewLogin:
		if !prev.Location.Equal(res.Location) {
			m.expiredNotice = res.Location.SessionExpired()
			m.formErr = ""
		}
		return m, nil
	case navigation.ViewSignup:
		if prev.View != navigation.ViewSignup {
			m.formErr = ""
		}
		return m, nil
	}

	if res.Outcome == navigation.OutcomeRender && res.Redirect == navigation.RedirectNone {
		return m.startLoad()
	}
	return m, nil
}

func (m *Model) stopLoad() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.loading = false
	m.seq++
}

// startLoad fetches the list endpoint of the current view, if it has one.
func (m Model) startLoad() (tea.Model, tea.Cmd) {
	path, ok := EndpointFor(m.res.View, m.res.Location)
	if !ok || m.fetcher == nil {
		return m, nil
	}

	m.stopLoad()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.loading = true
	m.loadPath = path

	seq := m.seq
	fetcher := m.fetcher
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer cancel()
		resp, err := fetcher.Get(ctx, path)
		if err != nil {
			return dataLoadedMsg{seq: seq, path: path, err: err}
		}
		data, err := Flatten(resp.Body)
		return dataLoadedMsg{seq: seq, path: path, data: data, err: err}
	})
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.res.View {
	case navigation.ViewLogin, navigation.ViewSignup:
		return m.handleFormKey(msg)
	}

	if m.goToActive {
		return m.handleGoToKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case m.res.Outcome == navigation.OutcomeLoading:
		return m, nil

	case key.Matches(msg, m.keys.Home):
		return m, m.navigate(navigation.DashboardPath)

	case key.Matches(msg, m.keys.GoTo):
		m.goToActive = true
		m.goTo.SetValue("")
		return m, m.goTo.Focus()

	case key.Matches(msg, m.keys.Reload):
		return m.startLoad()

	case key.Matches(msg, m.keys.Logout):
		sess := m.session
		return m, func() tea.Msg {
			return logoutMsg{err: sess.Logout(context.Background())}
		}

	case key.Matches(msg, m.keys.QuickLink):
		if link, ok := quickLinkFor(msg.String()); ok {
			return m, m.navigate(link.Path)
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter) && m.res.Outcome == navigation.OutcomeNotFound:
		return m, m.navigate(navigation.DashboardPath)
	}

	if m.hasTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onSignup := m.res.View == navigation.ViewSignup
	f := &m.login
	if onSignup {
		f = &m.signup
	}

	switch {
	case key.Matches(msg, m.formKeys.Switch):
		if onSignup && msg.String() == "esc" {
			return m, m.navigate(navigation.LoginPath)
		}
		if !onSignup && msg.String() == "ctrl+n" {
			return m, m.navigate(navigation.SignupPath)
		}
		return m, nil

	case key.Matches(msg, m.formKeys.Next):
		return m, f.move(1)

	case key.Matches(msg, m.formKeys.Prev):
		return m, f.move(-1)

	case key.Matches(msg, m.formKeys.Submit):
		if !f.last() {
			return m, f.move(1)
		}
		if onSignup {
			return m.submitSignup()
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	*f, cmd = f.update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.expiredNotice = false
	email, password := m.login.credentials()
	if email == "" || password == "" {
		m.formErr = "Email and password are required"
		return m, nil
	}

	m.formErr = ""
	m.submitting = true
	sess := m.session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := sess.Login(context.Background(), email, password)
		return authResultMsg{user: user, err: err}
	})
}

func (m Model) submitSignup() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	req := m.signup.signupRequest()
	if err := req.Validate(); err != nil {
		m.formErr = userMessage(err)
		return m, nil
	}

	m.formErr = ""
	m.submitting = true
	sess := m.session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := sess.Signup(context.Background(), req)
		return authResultMsg{user: user, err: err, signup: true}
	})
}

func (m Model) handleGoToKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.goToActive = false
		m.goTo.Blur()
		return m, nil
	case "enter":
		m.goToActive = false
		m.goTo.Blur()
		path := strings.TrimSpace(m.goTo.Value())
		if path == "" {
			return m, nil
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return m, m.navigate(path)
	}

	var cmd tea.Cmd
	m.goTo, cmd = m.goTo.Update(msg)
	return m, cmd
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.res.View == navigation.ViewLogin:
		m.login, cmd = m.login.update(msg)
	case m.res.View == navigation.ViewSignup:
		m.signup, cmd = m.signup.update(msg)
	case m.goToActive:
		m.goTo, cmd = m.goTo.Update(msg)
	}
	return m, cmd
}

// navigate replaces the location from a command. The port notifies the
// controller synchronously, which in turn sends to the program, so this
// must never run on the event loop.
func (m Model) navigate(path string) tea.Cmd {
	nav := m.nav
	return func() tea.Msg {
		nav.Navigate(path)
		return nil
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopLoad()
	m.quitting = true
	return m, tea.Quit
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return 12
	}
	// header, quick links, help and borders
	return max(m.height-12, 3)
}

// Resolution returns the resolution the model is showing.
func (m Model) Resolution() navigation.Resolution {
	return m.res
}

// authMessage explains a rejected login or signup. A bare 401 on the login
// endpoint means bad credentials, not an expired session.
func authMessage(err error, signup bool) string {
	var apiErr *gateway.APIError
	if !signup && errors.As(err, &apiErr) && apiErr.Message == "" && apiErr.StatusCode < 500 {
		return errors.NewInvalidCredentialsError("", err).Message
	}
	return userMessage(err)
}

// userMessage picks the human part of an error.
func userMessage(err error) string {
	var hisErr *errors.HISError
	if errors.As(err, &hisErr) {
		return hisErr.Message
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		return "Your session has expired. Please sign in again."
	}
	return err.Error()
}
