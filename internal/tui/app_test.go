package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/oauth2"

	"todo/internal/board"
	"todo/internal/credentials"
	"todo/internal/service"
	"todo/internal/testutil"
)

func useASCII(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

// seeded returns a service with Groceries [Milk (done), Eggs] and an empty
// Work list.
func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	groceries := svc.AddList("Groceries")
	svc.AddTask(groceries, "Milk", true)
	svc.AddTask(groceries, "Eggs", false)
	svc.AddList("Work")
	return svc
}

func newModel(t *testing.T, svc service.Service, creds credentials.Provider) *Model {
	t.Helper()
	useASCII(t)
	m := New(context.Background(), svc, creds, "http://localhost:8080/api")
	// Notice expiry is exercised directly through clearNoticeMsg.
	m.after = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	return m
}

func loggedIn() *credentials.Memory {
	return credentials.NewMemory(&oauth2.Token{AccessToken: "abc"})
}

// drain runs cmd and feeds request results back into the model until no
// work is left. Timers and spinner frames are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case resolvedMsg, loginMsg, registerMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}

func start(t *testing.T, m *Model) {
	t.Helper()
	drain(t, m, m.Init())
}

func TestNew_StartsOnLoginWithoutToken(t *testing.T) {
	m := newModel(t, seeded(), credentials.NewMemory(nil))
	start(t, m)

	if m.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %s", m.Screen())
	}
	if !strings.Contains(m.View(), "Log in") {
		t.Errorf("expected login view, got %q", m.View())
	}
}

func TestNew_StartsOnBoardWithToken(t *testing.T) {
	m := newModel(t, seeded(), loggedIn())
	start(t, m)

	if m.Screen() != ScreenBoard {
		t.Fatalf("expected board screen, got %s", m.Screen())
	}
	view := m.View()
	for _, want := range []string{"Groceries (1/2)", "[x] Milk", "[ ] Eggs", "Work (0/0)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestBoard_ToggleIsOptimistic(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, loggedIn())
	start(t, m)

	// Cursor starts on the Groceries header; Eggs is two rows down.
	press(t, m, "j", "j")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if !m.ctl.Lists()[0].Tasks[1].Completed {
		t.Fatal("expected Eggs completed before the response")
	}
	drain(t, m, cmd)

	if !svc.Snapshot()[0].Tasks[1].Completed {
		t.Error("expected server to store the flag")
	}
	if m.notice.Text != "Task updated." {
		t.Errorf("unexpected notice %+v", m.notice)
	}
}

func TestBoard_ToggleRollsBackOnFailure(t *testing.T) {
	svc := seeded()
	svc.SetTaskCompletedErr = errors.New("connection reset")
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "j", " ")

	if !m.ctl.Lists()[0].Tasks[0].Completed {
		t.Error("expected Milk restored to completed")
	}
	if m.notice.Kind != board.NoticeError {
		t.Errorf("expected error notice, got %+v", m.notice)
	}
}

func TestBoard_AddTask(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "a", "B", "r", "e", "a", "d")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	tasks := m.ctl.Lists()[0].Tasks
	if len(tasks) != 3 || !board.IsPending(tasks[2].ID) {
		t.Fatalf("expected a pending Bread task, got %+v", tasks)
	}
	if !strings.Contains(m.View(), "Bread saving") {
		t.Errorf("expected pending marker in view:\n%s", m.View())
	}
	drain(t, m, cmd)

	tasks = m.ctl.Lists()[0].Tasks
	if board.IsPending(tasks[2].ID) || tasks[2].Description != "Bread" {
		t.Errorf("expected confirmed Bread task, got %+v", tasks[2])
	}
	if m.board.mode != modeBrowse {
		t.Error("expected input closed")
	}
}

func TestBoard_AddTaskCancelKeepsDraft(t *testing.T) {
	m := newModel(t, seeded(), loggedIn())
	start(t, m)

	press(t, m, "a", "B", "u", "esc")
	listID := m.ctl.Lists()[0].ID
	if got := m.ctl.TaskDraft(listID); got != "Bu" {
		t.Fatalf("expected draft 'Bu', got %q", got)
	}

	press(t, m, "a")
	if got := m.board.input.Value(); got != "Bu" {
		t.Errorf("expected draft restored, got %q", got)
	}
}

func TestBoard_CreateListFailureRemovesPlaceholder(t *testing.T) {
	svc := seeded()
	svc.CreateListErr = &service.APIError{Status: 422, Message: "The name field is required."}
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "n", "X", "enter")

	if len(m.ctl.Lists()) != 2 {
		t.Errorf("expected placeholder removed, got %d lists", len(m.ctl.Lists()))
	}
	if m.notice.Text != "The name field is required." {
		t.Errorf("unexpected notice %+v", m.notice)
	}
}

func TestBoard_DeleteNeedsConfirmation(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "j", "d")
	if !strings.Contains(m.View(), `Delete "Milk"? (y/n)`) {
		t.Fatalf("expected confirmation prompt:\n%s", m.View())
	}
	press(t, m, "n")
	if len(m.ctl.Lists()[0].Tasks) != 2 || svc.Calls("DeleteTask") != 0 {
		t.Fatal("expected no deletion after declining")
	}

	press(t, m, "d", "y")
	if len(m.ctl.Lists()[0].Tasks) != 1 {
		t.Errorf("expected Milk removed, got %+v", m.ctl.Lists()[0].Tasks)
	}
	if len(svc.Snapshot()[0].Tasks) != 1 {
		t.Error("expected server deletion")
	}
}

func TestBoard_DeleteFailureRefreshes(t *testing.T) {
	svc := seeded()
	svc.DeleteListErr = errors.New("connection reset")
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "d", "y")

	if len(m.ctl.Lists()) != 2 {
		t.Errorf("expected list restored by refresh, got %d lists", len(m.ctl.Lists()))
	}
	if svc.Calls("ListLists") != 2 {
		t.Errorf("expected a follow-up refresh, got %d", svc.Calls("ListLists"))
	}
}

func TestBoard_UnauthorizedReturnsToLogin(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, loggedIn())
	start(t, m)

	svc.ListListsErr = service.ErrUnauthorized
	press(t, m, "r")

	if m.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %s", m.Screen())
	}
	if m.notice.Kind != board.NoticeSessionExpired {
		t.Errorf("expected session expired notice, got %+v", m.notice)
	}
	if len(m.ctl.Lists()) != 0 {
		t.Error("expected local state cleared")
	}
}

func TestBoard_FailedRefreshAfterDeleteIsShown(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, loggedIn())
	start(t, m)

	svc.DeleteListErr = errors.New("connection reset")
	svc.ListListsErr = errors.New("connection reset")
	press(t, m, "d", "y")

	want := "Could not delete list. Please try again.\nCould not load lists. Please try again."
	if m.notice.Text != want {
		t.Errorf("expected %q, got %q", want, m.notice.Text)
	}
}

func TestBoard_ResultsFromExpiredSessionAreIgnored(t *testing.T) {
	svc := seeded()
	svc.AddAccount("ana@example.com", "secret")
	m := newModel(t, svc, loggedIn())
	start(t, m)

	press(t, m, "j")
	_, stale := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	svc.ListListsErr = service.ErrUnauthorized
	press(t, m, "r")
	if m.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %s", m.Screen())
	}

	drain(t, m, stale)
	if m.notice.Kind != board.NoticeSessionExpired {
		t.Errorf("expected session expired notice kept, got %+v", m.notice)
	}
	if m.inflight != 0 {
		t.Errorf("expected no requests in flight, got %d", m.inflight)
	}

	svc.ListListsErr = nil
	press(t, m, "ana@example.com", "tab", "secret")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, refresh := m.Update(cmd())
	if m.inflight != 1 {
		t.Errorf("expected the reload counted, got %d in flight", m.inflight)
	}
	drain(t, m, refresh)
	if m.inflight != 0 || len(m.ctl.Lists()) != 2 {
		t.Errorf("expected board reloaded, got %d in flight and %d lists", m.inflight, len(m.ctl.Lists()))
	}
}

func TestBoard_Logout(t *testing.T) {
	creds := loggedIn()
	m := newModel(t, seeded(), creds)
	start(t, m)

	press(t, m, "L")

	if creds.ClearCount() != 1 {
		t.Errorf("expected credential cleared once, got %d", creds.ClearCount())
	}
	if m.Screen() != ScreenLogin || len(m.ctl.Lists()) != 0 {
		t.Error("expected login screen with empty board")
	}
}

func TestLogin_Success(t *testing.T) {
	svc := seeded()
	svc.AddAccount("ana@example.com", "secret")
	m := newModel(t, svc, credentials.NewMemory(nil))
	start(t, m)

	press(t, m, "ana@example.com", "tab", "secret", "enter")

	if m.Screen() != ScreenBoard {
		t.Fatalf("expected board screen, got %s (notice %+v)", m.Screen(), m.notice)
	}
	if len(m.ctl.Lists()) != 2 {
		t.Errorf("expected lists loaded, got %d", len(m.ctl.Lists()))
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := seeded()
	svc.AddAccount("ana@example.com", "secret")
	m := newModel(t, svc, credentials.NewMemory(nil))
	start(t, m)

	press(t, m, "ana@example.com", "tab", "wrong", "enter")

	if m.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %s", m.Screen())
	}
	if m.notice.Text != "Invalid credentials" {
		t.Errorf("unexpected notice %+v", m.notice)
	}
	if m.login.inputs[1].Value() != "" || m.login.inputs[0].Value() != "ana@example.com" {
		t.Error("expected password cleared and email kept")
	}
}

func TestLogin_RequiresFields(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, credentials.NewMemory(nil))
	start(t, m)

	press(t, m, "enter")

	if svc.Calls("Login") != 0 {
		t.Error("expected no login request")
	}
	if m.notice.Text != "Email and password are required." {
		t.Errorf("unexpected notice %+v", m.notice)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, credentials.NewMemory(nil))
	start(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	drain(t, m, cmd)
	if m.Screen() != ScreenRegister {
		t.Fatalf("expected register screen, got %s", m.Screen())
	}

	press(t, m, "Ana", "tab", "ana@example.com", "tab", "secret123", "tab", "secret124", "enter")

	if svc.Calls("Register") != 0 {
		t.Error("expected no register request")
	}
	if m.notice.Text != "Passwords do not match." {
		t.Errorf("unexpected notice %+v", m.notice)
	}
}

func TestRegister_SuccessReturnsToLogin(t *testing.T) {
	svc := seeded()
	m := newModel(t, svc, credentials.NewMemory(nil))
	start(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	drain(t, m, cmd)
	press(t, m, "Ana", "tab", "ana@example.com", "tab", "secret123", "tab", "secret123", "enter")

	if m.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %s (notice %+v)", m.Screen(), m.notice)
	}
	if m.login.inputs[0].Value() != "ana@example.com" {
		t.Errorf("expected email prefilled, got %q", m.login.inputs[0].Value())
	}
	if m.notice.Text != "Account created. Please log in." {
		t.Errorf("unexpected notice %+v", m.notice)
	}
}

func TestNotice_ClearedOnlyByLatestTimer(t *testing.T) {
	m := newModel(t, seeded(), loggedIn())
	start(t, m)

	m.setNotice(board.Notice{Kind: board.NoticeSuccess, Text: "first"})
	stale := m.noticeSeq
	m.setNotice(board.Notice{Kind: board.NoticeSuccess, Text: "second"})

	m.Update(clearNoticeMsg{seq: stale})
	if m.notice.Text != "second" {
		t.Fatalf("expected stale timer ignored, got %+v", m.notice)
	}
	m.Update(clearNoticeMsg{seq: m.noticeSeq})
	if m.notice.Kind != board.NoticeNone {
		t.Errorf("expected notice cleared, got %+v", m.notice)
	}
}
