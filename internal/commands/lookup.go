package commands

import (
	"errors"
	"fmt"
	"strings"

	"todo/internal/board"
	"todo/internal/output"
)

// errNoLists is returned when a command needs a list and there are none.
var errNoLists = errors.New("no lists (run: todo createlist <name>)")

// findList returns the index of the list named name. Names match exactly
// first, then case-insensitively; more than one match is ambiguous.
func findList(lists []board.List, name string) (int, error) {
	name = strings.TrimSpace(name)

	var exact, folded []int
	for i, l := range lists {
		switch {
		case l.Name == name:
			exact = append(exact, i)
		case strings.EqualFold(l.Name, name):
			folded = append(folded, i)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = folded
	}
	switch len(matches) {
	case 0:
		return -1, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return -1, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// listByLetter returns the index of the list carrying letter.
func listByLetter(lists []board.List, letter rune) (int, error) {
	for i := range lists {
		if output.Letter(i) == letter {
			return i, nil
		}
	}
	return -1, fmt.Errorf("list letter not found: %c", letter)
}

// resolveTasks maps references to tasks. Numeric references need
// listName; lettered ones must not have it. All references are resolved
// before anything changes so later numbers are not shifted by earlier
// deletes.
func resolveTasks(lists []board.List, listName string, refs []TaskRef) ([]board.Task, error) {
	named := -1
	if listName != "" {
		i, err := findList(lists, listName)
		if err != nil {
			return nil, err
		}
		named = i
	}

	tasks := make([]board.Task, 0, len(refs))
	for _, ref := range refs {
		var li int
		switch {
		case ref.HasLetter && named >= 0:
			return nil, errors.New("cannot use both --list and list letter")
		case ref.HasLetter:
			i, err := listByLetter(lists, ref.Letter)
			if err != nil {
				return nil, err
			}
			li = i
		case named >= 0:
			li = named
		default:
			return nil, fmt.Errorf("list required for task number %d (use --list or a letter)", ref.TaskNum)
		}

		list := lists[li]
		if ref.TaskNum < 1 || ref.TaskNum > len(list.Tasks) {
			return nil, fmt.Errorf("task number out of range: %s", ref)
		}
		tasks = append(tasks, list.Tasks[ref.TaskNum-1])
	}
	return tasks, nil
}
