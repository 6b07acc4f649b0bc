package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"todo/internal/config"
	"todo/internal/credentials"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct {
	now func() time.Time
}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Show login state and API URL" }
func (c *StatusCmd) Usage() string      { return "todo status" }
func (c *StatusCmd) NeedsService() bool { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tok, err := credentials.NewFileStore(cfg.TokenPath()).Token()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	fmt.Fprintf(out, "api:     %s\n", cfg.APIURL)
	fmt.Fprintf(out, "session: %s\n", credentials.Describe(tok, now()))
	return exitcode.Success
}
