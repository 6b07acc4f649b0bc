package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"todo/internal/board"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

const sessionExpiredMsg = "error: session expired (run: todo login)"

func newController(svc service.Service) *board.Controller {
	return board.NewController(svc, board.WithLogger(slog.Default().With("component", "board")))
}

// openBoard loads the server's lists into a new controller.
func openBoard(ctx context.Context, svc service.Service, errOut io.Writer) (*board.Controller, int) {
	ctl := newController(svc)
	ev := ctl.Do(ctx, ctl.Refresh())
	if ev.Notice.Kind != board.NoticeNone {
		return nil, report(ev, true, io.Discard, errOut)
	}
	return ctl, exitcode.Success
}

// apply runs req through ctl and reports the outcome.
func apply(ctx context.Context, ctl *board.Controller, req board.Request, cfg *config.Config, out, errOut io.Writer) int {
	return report(ctl.Do(ctx, req), cfg.Quiet, out, errOut)
}

// report prints an event the way every command does: "ok" on success,
// "error: ..." lines on failure. It returns the exit code.
func report(ev board.Event, quiet bool, out, errOut io.Writer) int {
	switch ev.Notice.Kind {
	case board.NoticeSessionExpired:
		fmt.Fprintln(errOut, sessionExpiredMsg)
		return exitcode.AuthError
	case board.NoticeError:
		output.FormatNotice(errOut, ev.Notice)
		return exitcode.For(ev.Notice.Err)
	}
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// backendFailure prints an error returned by the service directly.
func backendFailure(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintln(errOut, sessionExpiredMsg)
		return exitcode.AuthError
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		for _, line := range strings.Split(apiErr.Detail(), "\n") {
			fmt.Fprintf(errOut, "error: %s\n", line)
		}
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// userError prints err and returns the user error exit code.
func userError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
