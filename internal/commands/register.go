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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	req service.RegisterRequest
}

// SetRequest sets all registration fields (for testing).
func (c *RegisterCmd) SetRequest(req service.RegisterRequest) {
	c.req = req
}

func (c *RegisterCmd) Name() string       { return "register" }
func (c *RegisterCmd) Aliases() []string  { return nil }
func (c *RegisterCmd) Synopsis() string   { return "Create an account" }
func (c *RegisterCmd) Usage() string      { return "todo register --name <name> --email <email>" }
func (c *RegisterCmd) NeedsService() bool { return true }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.req.Name, "name", "", "")
	fs.StringVar(&c.req.Email, "email", "", "")
	fs.StringVar(&c.req.Password, "password", "", "")
	fs.StringVar(&c.req.PasswordConfirmation, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	req := c.req
	var err error
	if req.Name, err = ask(req.Name, "Name: ", false); err != nil {
		return userError(errOut, err)
	}
	if req.Email, err = ask(req.Email, "Email: ", false); err != nil {
		return userError(errOut, err)
	}
	if req.Password, err = ask(req.Password, "Password: ", true); err != nil {
		return userError(errOut, err)
	}
	if req.PasswordConfirmation, err = ask(req.PasswordConfirmation, "Confirm password: ", true); err != nil {
		return userError(errOut, err)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		fmt.Fprintln(errOut, "error: name, email and password required")
		return exitcode.UserError
	}
	if req.Password != req.PasswordConfirmation {
		fmt.Fprintln(errOut, "error: passwords do not match")
		return exitcode.UserError
	}

	if err := svc.Register(ctx, req); err != nil {
		return backendFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "registered (run: todo login)")
	}
	return exitcode.Success
}
