package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list <list-name>`.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return nil }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todo list [<list-name>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctl, code := openBoard(ctx, svc, errOut)
	if ctl == nil {
		return code
	}
	lists := ctl.Lists()

	if len(args) == 0 {
		if len(lists) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no lists found")
			}
			return exitcode.Success
		}
		for i, list := range lists {
			output.FormatList(out, output.Letter(i), list)
		}
		return exitcode.Success
	}

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	i, err := findList(lists, name)
	if err != nil {
		return userError(errOut, err)
	}
	output.FormatList(out, output.Letter(i), lists[i])
	return exitcode.Success
}
