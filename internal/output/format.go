// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/board"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// MaxLetters is the number of lists that get a letter.
	MaxLetters = 26
)

// Letter returns the reference letter for the list at index i, or 0 when
// i is past 'z'.
func Letter(i int) rune {
	if i < 0 || i >= MaxLetters {
		return 0
	}
	return rune('a' + i)
}

// FormatListHeader formats a list section header.
// Format: separator, "[a] Name (done/total)", separator.
func FormatListHeader(w io.Writer, letter rune, list board.List) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, listLine(letter, list))
	fmt.Fprintln(w, ListSeparator)
}

// FormatTask formats a task line inside a list section.
// Format: "{N:>4}  [x] {DESCRIPTION}\n", with " (saving)" appended to tasks
// the server has not confirmed.
func FormatTask(w io.Writer, num int, task board.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s%s\n", num, mark, normalizeDescription(task.Description), pendingSuffix(task.ID))
}

// FormatList formats a whole list section.
func FormatList(w io.Writer, letter rune, list board.List) {
	FormatListHeader(w, letter, list)
	for i, task := range list.Tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatListName formats a list line for the lists command.
func FormatListName(w io.Writer, letter rune, list board.List) {
	fmt.Fprintln(w, listLine(letter, list))
}

// FormatNotice writes a notice, one line per message. Errors get the
// "error: " prefix used for every CLI failure.
func FormatNotice(w io.Writer, n board.Notice) {
	if n.Kind == board.NoticeNone || n.Text == "" {
		return
	}
	for _, line := range strings.Split(n.Text, "\n") {
		if n.Kind == board.NoticeSuccess {
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintf(w, "error: %s\n", line)
	}
}

func listLine(letter rune, list board.List) string {
	tag := "[-]"
	if letter != 0 {
		tag = "[" + string(letter) + "]"
	}
	return fmt.Sprintf("%s %s (%d/%d)%s", tag, normalizeName(list.Name),
		list.CompletedCount(), len(list.Tasks), pendingSuffix(list.ID))
}

func pendingSuffix(id board.ID) string {
	if board.IsPending(id) {
		return " (saving)"
	}
	return ""
}

// normalizeDescription normalizes a task description for display.
// - Empty or whitespace-only descriptions become "(untitled)"
// - Newlines are replaced with spaces
func normalizeDescription(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}

// normalizeName normalizes a list name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeName(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
