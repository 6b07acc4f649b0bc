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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string   { return "Create a list" }
func (c *CreateListCmd) Usage() string      { return "todo createlist <list-name>" }
func (c *CreateListCmd) NeedsService() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	ctl := newController(svc)
	return apply(ctx, ctl, ctl.CreateList(name), cfg, out, errOut)
}
