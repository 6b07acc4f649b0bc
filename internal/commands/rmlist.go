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
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list" }
func (c *RmListCmd) Usage() string      { return "todo rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsService() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	ctl, code := openBoard(ctx, svc, errOut)
	if ctl == nil {
		return code
	}
	lists := ctl.Lists()
	i, err := findList(lists, name)
	if err != nil {
		return userError(errOut, err)
	}

	if !c.force && len(lists[i].Tasks) > 0 {
		fmt.Fprintln(errOut, "error: list not empty (use --force)")
		return exitcode.UserError
	}

	return apply(ctx, ctl, ctl.DeleteList(lists[i].ID), cfg, out, errOut)
}
