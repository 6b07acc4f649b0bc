package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/board"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. It flips completion of each
// referenced task.
type ToggleCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *ToggleCmd) SetListName(name string) {
	c.listName = name
}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Toggle task completion" }
func (c *ToggleCmd) Usage() string      { return "todo toggle [--list <list-name>] <ref...>" }
func (c *ToggleCmd) NeedsService() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runOnTasks(ctx, cfg, svc, c.listName, args, out, errOut,
		func(ctl *board.Controller, t board.Task) board.Request {
			// An earlier reference may have toggled the same task.
			if cur, ok := ctl.FindTask(t.ID); ok {
				t = cur
			}
			return ctl.ToggleTask(t.ID, t.Completed)
		})
}

// runOnTasks resolves task references and applies op to each task in
// order, stopping at the first failure.
func runOnTasks(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string, out, errOut io.Writer, op func(*board.Controller, board.Task) board.Request) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return userError(errOut, err)
	}

	ctl, code := openBoard(ctx, svc, errOut)
	if ctl == nil {
		return code
	}
	tasks, err := resolveTasks(ctl.Lists(), listName, refs)
	if err != nil {
		return userError(errOut, err)
	}

	for _, t := range tasks {
		if code := apply(ctx, ctl, op(ctl, t), cfg, out, errOut); code != exitcode.Success {
			return code
		}
	}
	return exitcode.Success
}
