package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/board"
)

type boardMode int

const (
	modeBrowse boardMode = iota
	modeAddTask
	modeAddList
	modeConfirmDelete
)

// row is a line on the board: a list header when task is -1.
type row struct {
	list int
	task int
}

type boardView struct {
	cursor int
	mode   boardMode
	input  textinput.Model

	// target is the list a new task goes to, or the entity to delete.
	target     board.ID
	targetTask bool
	targetName string

	keys      boardKeyMap
	inputKeys inputKeyMap
}

func newBoardView() boardView {
	return boardView{
		input:     newInput("", false),
		keys:      newBoardKeyMap(),
		inputKeys: newInputKeyMap(),
	}
}

func (v *boardView) reset() {
	v.cursor = 0
	v.mode = modeBrowse
	v.target = nil
	v.targetName = ""
	v.input.Blur()
	v.input.SetValue("")
}

func rows(lists []board.List) []row {
	var out []row
	for li, l := range lists {
		out = append(out, row{list: li, task: -1})
		for ti := range l.Tasks {
			out = append(out, row{list: li, task: ti})
		}
	}
	return out
}

// clamp keeps the cursor on an existing row after the board changed.
func (v *boardView) clamp(lists []board.List) {
	n := len(rows(lists))
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *boardView) current(lists []board.List) (row, bool) {
	rs := rows(lists)
	if v.cursor < 0 || v.cursor >= len(rs) {
		return row{}, false
	}
	return rs[v.cursor], true
}

func (m *Model) updateBoard(msg tea.Msg) tea.Cmd {
	v := &m.board
	switch v.mode {
	case modeAddTask, modeAddList:
		return m.updateBoardInput(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	lists := m.ctl.Lists()

	switch {
	case key.Matches(km, v.keys.Quit):
		return tea.Quit
	case key.Matches(km, v.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(km, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(km, v.keys.Down):
		if v.cursor < len(rows(lists))-1 {
			v.cursor++
		}
	case key.Matches(km, v.keys.Refresh):
		return m.run(m.ctl.Refresh())
	case key.Matches(km, v.keys.Logout):
		return m.logout()
	case key.Matches(km, v.keys.Toggle):
		r, ok := v.current(lists)
		if !ok || r.task < 0 {
			return nil
		}
		t := lists[r.list].Tasks[r.task]
		return m.run(m.ctl.ToggleTask(t.ID, t.Completed))
	case key.Matches(km, v.keys.AddTask):
		r, ok := v.current(lists)
		if !ok {
			return m.setNotice(board.Notice{Kind: board.NoticeError, Text: "Create a list first."})
		}
		l := lists[r.list]
		v.mode = modeAddTask
		v.target = l.ID
		v.targetName = l.Name
		v.input.Placeholder = "New task"
		v.input.SetValue(m.ctl.TaskDraft(l.ID))
		return v.input.Focus()
	case key.Matches(km, v.keys.NewList):
		v.mode = modeAddList
		v.target = nil
		v.input.Placeholder = "New list"
		v.input.SetValue(m.ctl.ListDraft())
		return v.input.Focus()
	case key.Matches(km, v.keys.Delete):
		r, ok := v.current(lists)
		if !ok {
			return nil
		}
		v.mode = modeConfirmDelete
		if r.task < 0 {
			v.target, v.targetTask, v.targetName = lists[r.list].ID, false, lists[r.list].Name
		} else {
			t := lists[r.list].Tasks[r.task]
			v.target, v.targetTask, v.targetName = t.ID, true, t.Description
		}
	}
	return nil
}

func (m *Model) updateBoardInput(msg tea.Msg) tea.Cmd {
	v := &m.board
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(km, v.inputKeys.Cancel):
		m.saveDraft()
		m.closeInput()
		return nil
	case key.Matches(km, v.inputKeys.Submit):
		text := v.input.Value()
		var req board.Request
		if v.mode == modeAddTask {
			m.ctl.SetTaskDraft(v.target, text)
			req = m.ctl.CreateTask(v.target, text)
		} else {
			m.ctl.SetListDraft(text)
			req = m.ctl.CreateList(text)
		}
		m.closeInput()
		return m.run(req)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (m *Model) saveDraft() {
	v := &m.board
	if v.mode == modeAddTask {
		m.ctl.SetTaskDraft(v.target, v.input.Value())
	} else {
		m.ctl.SetListDraft(v.input.Value())
	}
}

func (m *Model) closeInput() {
	v := &m.board
	v.mode = modeBrowse
	v.target = nil
	v.input.Blur()
	v.input.SetValue("")
	v.clamp(m.ctl.Lists())
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	v := &m.board
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "y", "Y":
		var req board.Request
		if v.targetTask {
			req = m.ctl.DeleteTask(v.target)
		} else {
			req = m.ctl.DeleteList(v.target)
		}
		v.mode = modeBrowse
		v.target = nil
		v.clamp(m.ctl.Lists())
		return m.run(req)
	case "n", "N", "esc":
		v.mode = modeBrowse
		v.target = nil
	}
	return nil
}

func (m *Model) logout() tea.Cmd {
	if err := m.creds.Clear(); err != nil {
		m.log.Warn("clearing credential failed", "err", err)
		return m.setNotice(board.Notice{Kind: board.NoticeError, Text: "Could not log out. Please try again.", Err: err})
	}
	m.ctl.Reset()
	return m.toLogin(board.Notice{Kind: board.NoticeSuccess, Text: "Logged out."})
}

func (m *Model) viewBoard() string {
	v := &m.board
	s := m.styles
	lists := m.ctl.Lists()

	var b strings.Builder
	b.WriteString(s.Title.Render("To-do lists"))
	if m.inflight > 0 {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	if len(lists) == 0 {
		b.WriteString(s.EmptyMessage.Render("No lists yet. Press n to create one."))
		b.WriteString("\n")
	}

	i := 0
	for _, l := range lists {
		line := fmt.Sprintf("%s (%d/%d)", l.Name, l.CompletedCount(), len(l.Tasks))
		line = s.ListHeader.Render(line)
		if board.IsPending(l.ID) {
			line += " " + s.Pending.Render("saving")
		}
		b.WriteString(m.cursorLine(i, line))
		i++
		for _, t := range l.Tasks {
			mark, style := "[ ]", s.Task
			if t.Completed {
				mark, style = "[x]", s.TaskDone
			}
			line := "  " + mark + " " + style.Render(t.Description)
			if board.IsPending(t.ID) {
				line += " " + s.Pending.Render("saving")
			}
			b.WriteString(m.cursorLine(i, line))
			i++
		}
	}

	switch v.mode {
	case modeAddTask:
		fmt.Fprintf(&b, "\nAdd to %s\n%s\n", v.targetName, s.InputFocused.Render(v.input.View()))
	case modeAddList:
		fmt.Fprintf(&b, "\n%s\n", s.InputFocused.Render(v.input.View()))
	case modeConfirmDelete:
		b.WriteString("\n" + s.Confirm.Render(fmt.Sprintf("Delete %q? (y/n)", v.targetName)) + "\n")
	}

	if n := m.renderNotice(); n != "" {
		b.WriteString("\n" + n + "\n")
	}

	if v.mode == modeAddTask || v.mode == modeAddList {
		b.WriteString(s.Help.Render(m.help.View(v.inputKeys)))
	} else {
		b.WriteString(s.Help.Render(m.help.View(v.keys)))
	}
	return b.String()
}

func (m *Model) cursorLine(i int, line string) string {
	if i == m.board.cursor && m.board.mode == modeBrowse {
		return m.styles.Selected.Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}
