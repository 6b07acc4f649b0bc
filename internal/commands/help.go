package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                         List all lists and their tasks
  todo list [common flags] <list-name>         List tasks in one list
  todo lists [common flags]
  todo add [common flags] [--list <list-name>] <description...>
  todo toggle [common flags] [--list <list-name>] <ref...>
  todo done [common flags] [--list <list-name>] <ref...>
  todo rm [common flags] [--list <list-name>] <ref...>
  todo createlist [common flags] <list-name>
  todo addlist [common flags] <list-name>
  todo rmlist [common flags] [--force] <list-name>
  todo login [common flags] [--email <email>] [--password <password>]
  todo register [common flags] --name <name> --email <email>
  todo logout [common flags]
  todo status [common flags]
  todo ui [common flags]
  todo help
  todo version

Task references:
  a1      task 1 of list a (lists are lettered a-z in server order)
  3       task 3 of the list given with --list

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override API base URL (default http://localhost:8080/api)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
