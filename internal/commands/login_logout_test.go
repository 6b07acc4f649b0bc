package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/credentials"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/testutil"
)

// scriptedPrompter answers prompts from fixed queues.
type scriptedPrompter struct {
	lines   []string
	secrets []string
	asked   []string
}

func (p *scriptedPrompter) Line(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.lines) == 0 {
		return "", errors.New("no input")
	}
	s := p.lines[0]
	p.lines = p.lines[1:]
	return s, nil
}

func (p *scriptedPrompter) Secret(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.secrets) == 0 {
		return "", errors.New("no input")
	}
	s := p.secrets[0]
	p.secrets = p.secrets[1:]
	return s, nil
}

func withPrompter(t *testing.T, p commands.Prompter) {
	t.Helper()
	prev := commands.DefaultPrompter
	commands.DefaultPrompter = p
	t.Cleanup(func() { commands.DefaultPrompter = prev })
}

func runWithConfig(t *testing.T, cmd commands.Command, cfg *config.Config, svc service.Service, args []string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestLoginCommand_Flags(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddAccount("ana@example.com", "secret")
	withPrompter(t, &scriptedPrompter{})

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("ana@example.com", "secret")
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if !svc.LoggedIn {
		t.Error("expected Login to be called")
	}
}

func TestLoginCommand_Prompts(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddAccount("ana@example.com", "secret")
	p := &scriptedPrompter{lines: []string{" ana@example.com "}, secrets: []string{"secret"}}
	withPrompter(t, p)

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if strings.Join(p.asked, "|") != "Email: |Password: " {
		t.Errorf("unexpected prompts %q", p.asked)
	}
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddAccount("ana@example.com", "secret")

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("ana@example.com", "wrong")
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: Invalid credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	svc := testutil.NewFakeService()
	withPrompter(t, &scriptedPrompter{secrets: []string{""}})

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("ana@example.com", "")
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: email and password required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("Login") != 0 {
		t.Error("expected no login request")
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.RegisterCmd{}
	cmd.SetRequest(service.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "registered (run: todo login)\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if len(svc.Registered) != 1 || svc.Registered[0].Email != "ana@example.com" {
		t.Errorf("unexpected registrations %+v", svc.Registered)
	}
}

func TestRegisterCommand_PasswordMismatch(t *testing.T) {
	svc := testutil.NewFakeService()
	withPrompter(t, &scriptedPrompter{secrets: []string{"secret123", "secret124"}})

	cmd := &commands.RegisterCmd{}
	cmd.SetRequest(service.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: passwords do not match\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("Register") != 0 {
		t.Error("expected no register request")
	}
}

func TestRegisterCommand_ValidationError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RegisterErr = &service.APIError{
		Status: 422,
		Errors: map[string][]string{
			"email":    {"The email has already been taken."},
			"password": {"The password must be at least 8 characters."},
		},
	}

	cmd := &commands.RegisterCmd{}
	cmd.SetRequest(service.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "short", PasswordConfirmation: "short",
	})
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: The email has already been taken.\nerror: The password must be at least 8 characters.\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestLogoutCommand_RemovesToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	store := credentials.NewFileStore(cfg.TokenPath())
	if err := store.SetToken(&oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	settings := filepath.Join(cfg.Dir, config.ConfigFile)
	if err := os.WriteFile(settings, []byte(`{"api_url":"http://example.com/api"}`), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	stdout, _, code := runWithConfig(t, &commands.LogoutCmd{}, cfg, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if cfg.HasToken() {
		t.Error("expected token removed")
	}
	if _, err := os.Stat(settings); err != nil {
		t.Error("expected config.json to be kept")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, nil, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestStatusCommand(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), APIURL: "http://localhost:8080/api"}

	stdout, _, code := runWithConfig(t, &commands.StatusCmd{}, cfg, nil, nil)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "api:     http://localhost:8080/api\nsession: not logged in\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	store := credentials.NewFileStore(cfg.TokenPath())
	if err := store.SetToken(&oauth2.Token{AccessToken: "abc", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	stdout, _, _ = runWithConfig(t, &commands.StatusCmd{}, cfg, nil, nil)
	if !strings.Contains(stdout, "session: session expired at ") {
		t.Errorf("expected expired session, got %q", stdout)
	}
}

func TestStatusCommand_CorruptToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{"), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}

	_, stderr, code := runWithConfig(t, &commands.StatusCmd{}, cfg, nil, nil)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
