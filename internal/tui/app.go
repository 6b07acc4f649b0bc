// Package tui is the interactive terminal surface of the to-do client.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/board"
	"todo/internal/credentials"
	"todo/internal/service"
)

// Screen identifies which screen is shown.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenBoard
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenBoard:
		return "board"
	default:
		return "unknown"
	}
}

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 4 * time.Second

type resolvedMsg struct {
	res      board.Result
	session  int
	followUp bool
}

type loginMsg struct {
	email string
	err   error
}

type registerMsg struct {
	email string
	err   error
}

type clearNoticeMsg struct {
	seq int
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	svc    service.Service
	creds  credentials.Provider
	ctl    *board.Controller
	apiURL string
	log    *slog.Logger

	screen Screen
	width  int
	height int

	styles  *Styles
	help    help.Model
	spinner spinner.Model

	// inflight counts requests whose results have not arrived yet.
	inflight int

	// session increases whenever the board is dropped for a login, so
	// results of requests issued before that are ignored.
	session int

	notice    board.Notice
	noticeSeq int
	after     func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	login    form
	register form
	board    boardView
}

// New creates the root model. The board is shown first when a credential is
// stored; otherwise the login screen is.
func New(ctx context.Context, svc service.Service, creds credentials.Provider, apiURL string) *Model {
	log := slog.Default().With("component", "tui")
	m := &Model{
		ctx:      ctx,
		svc:      svc,
		creds:    creds,
		ctl:      board.NewController(svc, board.WithLogger(log)),
		apiURL:   apiURL,
		log:      log,
		styles:   NewStyles(DefaultTheme),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		after:    tea.Tick,
		login:    newLoginForm(),
		register: newRegisterForm(),
		board:    newBoardView(),
	}
	m.screen = ScreenLogin
	if tok, err := creds.Token(); err == nil && tok != nil {
		m.screen = ScreenBoard
	} else if err != nil {
		m.log.Warn("stored credential unreadable", "err", err)
	}
	return m
}

// Screen returns the screen currently shown.
func (m *Model) Screen() Screen { return m.screen }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == ScreenBoard {
		return m.run(m.ctl.Refresh())
	}
	return m.login.focus(0)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = board.Notice{}
		}
		return m, nil

	case resolvedMsg:
		return m, m.resolve(msg)

	case loginMsg:
		return m, m.loggedIn(msg)

	case registerMsg:
		return m, m.registered(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.screen {
	case ScreenLogin:
		return m, m.updateLogin(msg)
	case ScreenRegister:
		return m, m.updateRegister(msg)
	default:
		return m, m.updateBoard(msg)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case ScreenLogin:
		body = m.viewLogin()
	case ScreenRegister:
		body = m.viewRegister()
	default:
		body = m.viewBoard()
	}

	width := m.width
	if width <= 0 || width > MaxWidth {
		width = MaxWidth
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(body)
}

// run turns a controller request into a command whose message is resolved
// on the update loop. A nil request yields no command.
func (m *Model) run(req board.Request) tea.Cmd {
	return m.start(req, false)
}

func (m *Model) start(req board.Request, followUp bool) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx, session := m.ctx, m.session
	m.inflight++
	fetch := func() tea.Msg {
		return resolvedMsg{res: req(ctx), session: session, followUp: followUp}
	}
	if m.inflight == 1 {
		return tea.Batch(fetch, m.spinner.Tick)
	}
	return fetch
}

func (m *Model) resolve(msg resolvedMsg) tea.Cmd {
	if msg.session != m.session {
		m.log.Debug("dropping result from an earlier session")
		return nil
	}
	if m.inflight > 0 {
		m.inflight--
	}
	ev := m.ctl.Resolve(msg.res)
	if ev.Unauthorized {
		return m.toLogin(ev.Notice)
	}
	m.board.clamp(m.ctl.Lists())
	notice := ev.Notice
	if msg.followUp && notice.Kind == board.NoticeError && m.notice.Kind == board.NoticeError {
		notice = m.notice.Append(notice)
	}
	return tea.Batch(m.setNotice(notice), m.start(ev.Next, true))
}

// setNotice shows n and schedules its removal. A later notice replaces an
// earlier one and cancels its removal.
func (m *Model) setNotice(n board.Notice) tea.Cmd {
	if n.Kind == board.NoticeNone {
		return nil
	}
	m.notice = n
	m.noticeSeq++
	seq := m.noticeSeq
	return m.after(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// toLogin drops any board interaction and shows the login screen.
func (m *Model) toLogin(n board.Notice) tea.Cmd {
	m.session++
	m.inflight = 0
	m.screen = ScreenLogin
	m.board.reset()
	m.login.reset()
	return tea.Batch(m.setNotice(n), m.login.focus(0))
}

func (m *Model) renderNotice() string {
	switch m.notice.Kind {
	case board.NoticeSuccess:
		return m.styles.NoticeSuccess.Render(m.notice.Text)
	case board.NoticeError, board.NoticeSessionExpired:
		return m.styles.NoticeError.Render(m.notice.Text)
	default:
		return ""
	}
}

// Run starts the interactive UI and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, svc service.Service, creds credentials.Provider, apiURL string) error {
	applyColorProfile()
	m := New(ctx, svc, creds, apiURL)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
