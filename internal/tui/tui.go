// Package tui is the interactive portal: a bubbletea program whose Model owns
// the navigation shell, the wizard session and both listings. Backend calls
// run as commands and report back as messages, so only Update mutates state.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/browseropen"
	"github.com/gwportal/gwportal-cli/internal/buildinfo"
	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/nav"
	"github.com/gwportal/gwportal-cli/internal/paging"
	"github.com/gwportal/gwportal-cli/internal/wizard"
)

// Backend is everything the portal asks of the gateway.
type Backend interface {
	wizard.Gateway
	ListAPIs(ctx context.Context) api.Result[[]api.APIRecord]
	ListHistory(ctx context.Context) api.Result[[]api.HistoryRecord]
}

type Config struct {
	Backend  Backend
	DocsURL  string
	PageSize int
	// Timeout bounds each backend call.
	Timeout time.Duration
	Logger  *zap.Logger
	// OpenURL opens the documentation link. Defaults to the system browser.
	OpenURL func(string) error
}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeWarn
	noticeError
)

// notice is the one-line status bar message.
type notice struct {
	kind noticeKind
	text string
}

type (
	apisLoadedMsg    struct{ res api.Result[[]api.APIRecord] }
	historyLoadedMsg struct{ res api.Result[[]api.HistoryRecord] }
	editFetchedMsg   struct {
		req wizard.EditRequest
		res api.Result[api.APIDetail]
	}
	submittedMsg struct {
		req wizard.SubmitRequest
		res api.Result[api.Confirmation]
	}
	contextCheckedMsg struct{ res api.Result[api.ContextAvailability] }
	docsOpenedMsg     struct{ err error }
)

type Model struct {
	backend Backend
	docsURL string
	timeout time.Duration
	log     *zap.Logger
	openURL func(string) error

	shell   *nav.Shell
	session *wizard.Session
	apis    *paging.Listing[api.APIRecord]
	history *paging.Listing[api.HistoryRecord]

	menus        map[nav.Screen]int
	form         wizardForm
	apisTable    table.Model
	historyTable table.Model
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	notice       *notice
	// jump holds the page number typed so far on a listing.
	jump         string

	width  int
	height int
}

func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.OpenURL == nil {
		cfg.OpenURL = browseropen.Open
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(portalAccent)

	m := Model{
		backend:      cfg.Backend,
		docsURL:      strings.TrimSpace(cfg.DocsURL),
		timeout:      cfg.Timeout,
		log:          cfg.Logger,
		openURL:      cfg.OpenURL,
		shell:        nav.NewShell(),
		session:      wizard.New(),
		apis:         paging.NewListing[api.APIRecord](cfg.PageSize),
		history:      paging.NewListing[api.HistoryRecord](cfg.PageSize),
		menus:        map[nav.Screen]int{},
		form:         newWizardForm(),
		apisTable:    newTable(apiColumns(80)),
		historyTable: newTable(historyColumns(80)),
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeyMap(),
	}
	m.form.load(m.session)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Screen is the active screen.
func (m Model) Screen() nav.Screen { return m.shell.Current() }

func (m Model) busy() bool {
	return m.session.Pending().Any() || m.apis.Pending() || m.history.Pending()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case apisLoadedMsg:
		m.finishListing(msg.res.Substituted, msg.res.Err, "APIs")
		if msg.res.Err == nil {
			m.apis.Load(msg.res.Value, msg.res.Substituted)
		} else {
			m.apis.Fail(msg.res.Err)
		}
		m.refreshTables()
		return m, nil

	case historyLoadedMsg:
		m.finishListing(msg.res.Substituted, msg.res.Err, "history")
		if msg.res.Err == nil {
			m.history.Load(msg.res.Value, msg.res.Substituted)
		} else {
			m.history.Fail(msg.res.Err)
		}
		m.refreshTables()
		return m, nil

	case editFetchedMsg:
		err := m.session.FinishEdit(msg.req, msg.res)
		if errors.Is(err, wizard.ErrStale) {
			m.log.Debug("dropping edit fetch for a discarded draft", zap.String("id", msg.req.Target.ID.String()))
			return m, nil
		}
		if err != nil {
			m.setNotice(noticeError, fmt.Sprintf("Could not load %s: %s", recordLabel(msg.req.Target), err))
			return m, nil
		}
		m.shell.Go(nav.EditAPI)
		m.form.load(m.session)
		m.notice = nil
		return m, nil

	case submittedMsg:
		out, err := m.session.FinishSubmit(msg.req, msg.res)
		if errors.Is(err, wizard.ErrStale) {
			m.log.Debug("dropping submit result for a discarded draft", zap.String("mode", msg.req.Mode.String()))
			return m, nil
		}
		if err != nil {
			m.setNotice(noticeError, api.MsgDeploymentFailed+" ("+causeText(err)+")")
			return m, nil
		}
		m.form.load(m.session)
		m.shell.Go(nav.Home)
		if out.Assumed {
			m.setNotice(noticeWarn, out.Message+" (gateway unreachable, not confirmed)")
		} else {
			m.setNotice(noticeSuccess, out.Message)
		}
		return m, nil

	case contextCheckedMsg:
		avail, err := m.session.FinishContextCheck(msg.res)
		switch {
		case err != nil:
			m.setNotice(noticeError, api.MsgContextCheckFail+": "+causeText(err))
		case avail.Available && (msg.res.Substituted || avail.Assumed):
			m.setNotice(noticeWarn, avail.Message+" (gateway unreachable, not confirmed)")
		case avail.Available:
			m.setNotice(noticeSuccess, avail.Message)
		default:
			m.setNotice(noticeError, avail.Message)
		}
		return m, nil

	case docsOpenedMsg:
		if msg.err != nil {
			m.setNotice(noticeError, "Could not open documentation: "+msg.err.Error()+" ("+m.docsURL+")")
		} else {
			m.setNotice(noticeInfo, "Opened "+m.docsURL)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.shell.Current() {
		case nav.CreateAPI, nav.EditAPI:
			return m.updateWizard(msg)
		case nav.ViewAPIs:
			return m.updateAPIs(msg)
		case nav.APIHistory:
			return m.updateHistory(msg)
		default:
			return m.updateMenu(msg)
		}
	}
	return m, nil
}

// goTo switches screens and runs whatever entering the screen triggers.
func (m *Model) goTo(screen nav.Screen) tea.Cmd {
	t := m.shell.Go(screen)
	if t.From != t.To {
		m.notice = nil
		m.jump = ""
		if ownsDraft(t.From) {
			// Leaving discards the draft; late replies for it are dropped.
			m.session.Reset()
			m.form.load(m.session)
		}
	}
	m.log.Debug("navigate", zap.String("from", string(t.From)), zap.String("to", string(t.To)))
	switch t.Effect {
	case nav.EffectFetchAPIs:
		return m.fetchAPIs()
	case nav.EffectFetchHistory:
		return m.fetchHistory()
	case nav.EffectResetWizard:
		m.session.Reset()
		m.form.load(m.session)
	}
	return nil
}

// ownsDraft reports whether the wizard session belongs to screen: the wizard
// itself, or the listing an edit is started from.
func ownsDraft(screen nav.Screen) bool {
	return screen == nav.CreateAPI || screen == nav.EditAPI || screen == nav.ViewAPIs
}

func (m *Model) back() tea.Cmd {
	return m.goTo(m.shell.Current().Parent())
}

func (m *Model) setNotice(kind noticeKind, text string) {
	m.notice = &notice{kind: kind, text: text}
}

func (m *Model) finishListing(substituted bool, err error, what string) {
	switch {
	case err != nil:
		m.setNotice(noticeError, "Could not load "+what+": "+causeText(err))
	case substituted:
		m.setNotice(noticeWarn, "Gateway unreachable, showing sample "+what)
	}
}

// request runs fn as a command bounded by the call timeout, alongside a
// spinner tick.
func (m *Model) request(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return tea.Batch(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}, m.spinner.Tick)
}

func (m *Model) fetchAPIs() tea.Cmd {
	if !m.apis.Begin() {
		return nil
	}
	backend := m.backend
	return m.request(func(ctx context.Context) tea.Msg {
		return apisLoadedMsg{res: backend.ListAPIs(ctx)}
	})
}

func (m *Model) fetchHistory() tea.Cmd {
	if !m.history.Begin() {
		return nil
	}
	backend := m.backend
	return m.request(func(ctx context.Context) tea.Msg {
		return historyLoadedMsg{res: backend.ListHistory(ctx)}
	})
}

func (m *Model) startEdit(rec api.APIRecord) tea.Cmd {
	req, err := m.session.BeginEdit(rec)
	if err != nil {
		m.setNotice(noticeError, causeText(err))
		return nil
	}
	m.setNotice(noticeInfo, "Loading "+recordLabel(rec)+"…")
	backend := m.backend
	return m.request(func(ctx context.Context) tea.Msg {
		return editFetchedMsg{req: req, res: req.Send(ctx, backend)}
	})
}

func (m *Model) startSubmit() tea.Cmd {
	req, err := m.session.BeginSubmit()
	if err != nil {
		m.setNotice(noticeError, causeText(err))
		return nil
	}
	m.setNotice(noticeInfo, "Deploying…")
	backend := m.backend
	return m.request(func(ctx context.Context) tea.Msg {
		return submittedMsg{req: req, res: req.Send(ctx, backend)}
	})
}

func (m *Model) startContextCheck() tea.Cmd {
	c, err := m.session.BeginContextCheck()
	if err != nil {
		if errors.Is(err, api.ErrEmptyContext) {
			m.setNotice(noticeError, "Please enter API Context")
		} else {
			m.setNotice(noticeError, causeText(err))
		}
		return nil
	}
	backend := m.backend
	return m.request(func(ctx context.Context) tea.Msg {
		return contextCheckedMsg{res: backend.CheckContext(ctx, c)}
	})
}

func (m *Model) openDocs() tea.Cmd {
	u, open := m.docsURL, m.openURL
	return func() tea.Msg { return docsOpenedMsg{err: open(u)} }
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}

	var body string
	var keys help.KeyMap
	switch m.shell.Current() {
	case nav.CreateAPI, nav.EditAPI:
		body = m.renderWizard()
		keys = m.keys.wizard(m.session.Step() == wizard.StepReview)
	case nav.ViewAPIs:
		body = m.renderListing(&m.apisTable, m.apis.Current().Summary(), m.apis.Cursor(), m.apis.Pending(), m.apis.Substituted())
		keys = m.keys.listing(true)
	case nav.APIHistory:
		body = m.renderListing(&m.historyTable, m.history.Current().Summary(), m.history.Cursor(), m.history.Pending(), m.history.Substituted())
		keys = m.keys.listing(false)
	case nav.Administrator:
		body = m.renderAdministrator()
		keys = m.keys.menu()
	default:
		body = m.renderMenu()
		keys = m.keys.menu()
	}

	parts := []string{m.renderHeader(), body}
	if n := m.renderNotice(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, faintIfDark(lipgloss.NewStyle().Foreground(portalMuted)).Render(m.help.View(keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	screen := m.shell.Current()
	title := titleStyle.Render(nav.Home.Title())
	crumbs := []string{}
	for s := screen; s != nav.Home; s = s.Parent() {
		crumbs = append([]string{s.Title()}, crumbs...)
	}
	if len(crumbs) > 0 {
		title += subtitleStyle.Render(" › " + strings.Join(crumbs, " › "))
	}
	right := subtitleStyle.Render(buildinfo.Current().Inline())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return title + "\n"
	}
	return title + strings.Repeat(" ", gap) + right + "\n"
}

func (m Model) renderNotice() string {
	var prefix string
	if m.busy() {
		prefix = m.spinner.View() + " "
	}
	if m.notice == nil {
		if prefix == "" {
			return ""
		}
		return prefix + subtitleStyle.Render("Working…")
	}
	return prefix + noticeStyle(m.notice.kind).Render(truncate(m.notice.text, m.width-lipgloss.Width(prefix)))
}

// causeText flattens wrapped errors into a short reason.
func causeText(err error) string {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		fields := append(append([]string{}, ve.Missing...), ve.Invalid...)
		return "Please fill all required fields: " + strings.Join(fields, ", ")
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return fmt.Sprintf("%s (HTTP %d)", se.Message, se.Status)
		}
		return fmt.Sprintf("HTTP %d", se.Status)
	}
	var te *api.TransportError
	if errors.As(err, &te) {
		return "gateway unreachable"
	}
	return err.Error()
}

func recordLabel(r api.APIRecord) string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	return "API " + r.ID.String()
}
