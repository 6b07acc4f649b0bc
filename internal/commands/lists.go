package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "List all lists" }
func (c *ListsCmd) Usage() string      { return "todo lists" }
func (c *ListsCmd) NeedsService() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctl, code := openBoard(ctx, svc, errOut)
	if ctl == nil {
		return code
	}
	for i, list := range ctl.Lists() {
		output.FormatListName(out, output.Letter(i), list)
	}
	return exitcode.Success
}
