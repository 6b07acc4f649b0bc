package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add [--list <list-name>] <description...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

// Run adds the task to the named list, or to list a when no name is given.
func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		fmt.Fprintln(errOut, "error: description required")
		return exitcode.UserError
	}

	ctl, code := openBoard(ctx, svc, errOut)
	if ctl == nil {
		return code
	}
	lists := ctl.Lists()

	i := 0
	if c.listName != "" {
		var err error
		if i, err = findList(lists, c.listName); err != nil {
			return userError(errOut, err)
		}
	} else if len(lists) == 0 {
		return userError(errOut, errNoLists)
	}

	return apply(ctx, ctl, ctl.CreateTask(lists[i].ID, description), cfg, out, errOut)
}
