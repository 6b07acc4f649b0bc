package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/board"
	"todo/internal/service"
)

// form is a column of labelled inputs with one focused at a time.
type form struct {
	labels  []string
	inputs  []textinput.Model
	focused int
	busy    bool
	keys    formKeyMap
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 255
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newLoginForm() form {
	return form{
		labels: []string{"Email", "Password"},
		inputs: []textinput.Model{
			newInput("you@example.com", false),
			newInput("password", true),
		},
		keys: newFormKeyMap(false),
	}
}

func newRegisterForm() form {
	return form{
		labels: []string{"Name", "Email", "Password", "Confirm password"},
		inputs: []textinput.Model{
			newInput("Your name", false),
			newInput("you@example.com", false),
			newInput("password", true),
			newInput("password again", true),
		},
		keys: newFormKeyMap(true),
	}
}

func (f *form) focus(i int) tea.Cmd {
	f.focused = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	n := len(f.inputs)
	return f.focus(((f.focused+delta)%n + n) % n)
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// reset clears secret fields and the busy flag. Plain fields keep their
// text so a rejected login does not retype the email.
func (f *form) reset() {
	f.busy = false
	for i := range f.inputs {
		if f.inputs[i].EchoMode == textinput.EchoPassword {
			f.inputs[i].SetValue("")
		}
	}
}

func (f *form) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f *form) view(s *Styles) string {
	rows := make([]string, 0, len(f.inputs))
	for i, in := range f.inputs {
		box := s.Input
		if i == f.focused {
			box = s.InputFocused
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			s.Label.Render(f.labels[i]),
			box.Render(in.View()),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) updateLogin(msg tea.Msg) tea.Cmd {
	f := &m.login
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInput(msg)
	}
	if f.busy {
		return nil
	}

	switch {
	case key.Matches(km, f.keys.Switch):
		m.screen = ScreenRegister
		m.register.reset()
		if email := f.value(0); email != "" {
			m.register.inputs[1].SetValue(email)
		}
		return m.register.focus(0)
	case key.Matches(km, f.keys.Next):
		return f.move(1)
	case key.Matches(km, f.keys.Prev):
		return f.move(-1)
	case key.Matches(km, f.keys.Submit):
		return m.submitLogin()
	}
	return f.updateInput(msg)
}

func (m *Model) submitLogin() tea.Cmd {
	f := &m.login
	email, password := f.value(0), f.inputs[1].Value()
	if email == "" || password == "" {
		return m.setNotice(board.Notice{Kind: board.NoticeError, Text: "Email and password are required."})
	}
	f.busy = true
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return loginMsg{email: email, err: svc.Login(ctx, email, password)}
	}
}

func (m *Model) loggedIn(msg loginMsg) tea.Cmd {
	m.login.reset()
	if msg.err != nil {
		m.log.Debug("login failed", "email", msg.email, "err", msg.err)
		return m.setNotice(authFailure(msg.err, "Could not log in. Please try again."))
	}
	m.log.Debug("logged in", "email", msg.email)
	m.ctl.Reset()
	m.board.reset()
	m.screen = ScreenBoard
	m.notice = board.Notice{}
	return m.run(m.ctl.Refresh())
}

func (m *Model) updateRegister(msg tea.Msg) tea.Cmd {
	f := &m.register
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInput(msg)
	}
	if f.busy {
		return nil
	}

	switch {
	case key.Matches(km, f.keys.Back):
		m.screen = ScreenLogin
		return m.login.focus(0)
	case key.Matches(km, f.keys.Next):
		return f.move(1)
	case key.Matches(km, f.keys.Prev):
		return f.move(-1)
	case key.Matches(km, f.keys.Submit):
		return m.submitRegister()
	}
	return f.updateInput(msg)
}

func (m *Model) submitRegister() tea.Cmd {
	f := &m.register
	req := service.RegisterRequest{
		Name:                 f.value(0),
		Email:                f.value(1),
		Password:             f.inputs[2].Value(),
		PasswordConfirmation: f.inputs[3].Value(),
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return m.setNotice(board.Notice{Kind: board.NoticeError, Text: "Name, email and password are required."})
	}
	if req.Password != req.PasswordConfirmation {
		return m.setNotice(board.Notice{Kind: board.NoticeError, Text: "Passwords do not match."})
	}
	f.busy = true
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return registerMsg{email: req.Email, err: svc.Register(ctx, req)}
	}
}

func (m *Model) registered(msg registerMsg) tea.Cmd {
	m.register.reset()
	if msg.err != nil {
		return m.setNotice(authFailure(msg.err, "Could not register. Please try again."))
	}
	m.screen = ScreenLogin
	m.login.reset()
	m.login.inputs[0].SetValue(msg.email)
	return tea.Batch(
		m.setNotice(board.Notice{Kind: board.NoticeSuccess, Text: "Account created. Please log in."}),
		m.login.focus(1),
	)
}

// authFailure shows the server's message when it sent one.
func authFailure(err error, fallback string) board.Notice {
	n := board.Notice{Kind: board.NoticeError, Text: fallback, Err: err}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		if detail := apiErr.Detail(); detail != "" {
			n.Text = detail
		}
	}
	return n
}

func (m *Model) viewLogin() string {
	return m.viewForm("Log in", &m.login)
}

func (m *Model) viewRegister() string {
	return m.viewForm("Create account", &m.register)
}

func (m *Model) viewForm(title string, f *form) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("  ")
	b.WriteString(m.styles.TitleMuted.Render(m.apiURL))
	if f.busy {
		b.WriteString("  " + m.styles.Pending.Render("working…"))
	}
	b.WriteString("\n\n")
	b.WriteString(f.view(m.styles))
	b.WriteString("\n")
	if n := m.renderNotice(); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	b.WriteString(m.styles.Help.Render(m.help.View(f.keys)))
	return b.String()
}
