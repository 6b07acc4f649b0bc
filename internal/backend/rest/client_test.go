package rest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/backend/rest"
	"todo/internal/credentials"
	"todo/internal/service"
	"todo/internal/testutil"
)

func newClient(t *testing.T, creds credentials.Provider) (*rest.Client, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend()
	t.Cleanup(backend.Close)
	return rest.NewWithHTTPClient(backend.URL(), backend.Client(), creds, nil), backend
}

func TestClient_ListLists(t *testing.T) {
	client, backend := newClient(t, credentials.NewMemory(nil))
	listID := backend.AddList("Groceries")
	backend.AddTask(listID, "Milk", true)
	backend.AddTask(listID, "Eggs", false)

	lists, err := client.ListLists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	if lists[0].Name != "Groceries" || len(lists[0].Tasks) != 2 {
		t.Errorf("unexpected list %+v", lists[0])
	}
	if !lists[0].Tasks[0].Completed || lists[0].Tasks[1].Completed {
		t.Errorf("completion flags not decoded: %+v", lists[0].Tasks)
	}

	req := backend.LastRequest()
	if req.Header.Get("Accept") != "application/json" {
		t.Errorf("expected json Accept header, got %q", req.Header.Get("Accept"))
	}
	if req.Header.Get("X-Request-Id") == "" {
		t.Error("expected a request id")
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("expected no Authorization header without a token")
	}
}

func TestClient_CreateListAndTask(t *testing.T) {
	client, backend := newClient(t, credentials.NewMemory(nil))

	list, err := client.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if list.ID == 0 || list.Name != "Groceries" {
		t.Errorf("unexpected list %+v", list)
	}

	task, err := client.CreateTask(context.Background(), list.ID, "Milk")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == 0 || task.ListID != list.ID {
		t.Errorf("unexpected task %+v", task)
	}

	snap := backend.Snapshot()
	if len(snap) != 1 || len(snap[0].Tasks) != 1 {
		t.Fatalf("unexpected server state %+v", snap)
	}
}

func TestClient_ValidationError(t *testing.T) {
	client, _ := newClient(t, credentials.NewMemory(nil))

	_, err := client.CreateList(context.Background(), " ")
	var apiErr *service.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", apiErr.Status)
	}
	if apiErr.Detail() != "The name field is required." {
		t.Errorf("unexpected detail %q", apiErr.Detail())
	}
}

func TestClient_ToggleAndDelete(t *testing.T) {
	client, backend := newClient(t, credentials.NewMemory(nil))
	listID := backend.AddList("Groceries")
	taskID := backend.AddTask(listID, "Milk", false)

	if err := client.SetTaskCompleted(context.Background(), taskID, true); err != nil {
		t.Fatalf("SetTaskCompleted: %v", err)
	}
	if !backend.Snapshot()[0].Tasks[0].Completed {
		t.Error("expected task completed on server")
	}
	if req := backend.LastRequest(); req.Method != http.MethodPut {
		t.Errorf("expected PUT, got %s", req.Method)
	}

	if err := client.DeleteTask(context.Background(), taskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := client.DeleteList(context.Background(), listID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if len(backend.Snapshot()) != 0 {
		t.Error("expected server empty")
	}
}

func TestClient_NotFound(t *testing.T) {
	client, _ := newClient(t, credentials.NewMemory(nil))

	err := client.DeleteTask(context.Background(), 42)
	var apiErr *service.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestClient_BearerAttached(t *testing.T) {
	creds := credentials.NewMemory(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	client, backend := newClient(t, creds)
	backend.SetRequireAuth(true)

	if _, err := client.ListLists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := backend.LastRequest().Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("unexpected Authorization header %q", got)
	}
}

func TestClient_ExpiredTokenNotSent(t *testing.T) {
	creds := credentials.NewMemory(&oauth2.Token{
		AccessToken: "test-token",
		Expiry:      time.Now().Add(-time.Hour),
	})
	client, backend := newClient(t, creds)

	if _, err := client.ListLists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := backend.LastRequest().Header.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestClient_UnauthorizedClearsCredential(t *testing.T) {
	creds := credentials.NewMemory(&oauth2.Token{AccessToken: "stale"})
	client, backend := newClient(t, creds)
	backend.SetRequireAuth(true)

	_, err := client.ListLists(context.Background())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tok, _ := creds.Token(); tok != nil {
		t.Error("expected credential cleared")
	}
	if creds.ClearCount() != 1 {
		t.Errorf("expected one Clear call, got %d", creds.ClearCount())
	}
}

func TestClient_Login(t *testing.T) {
	creds := credentials.NewMemory(nil)
	client, backend := newClient(t, creds)
	backend.AddAccount("ana@example.com", "secret")

	if err := client.Login(context.Background(), "ana@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	tok, _ := creds.Token()
	if tok == nil || tok.AccessToken != backend.Token() {
		t.Fatalf("expected stored token, got %+v", tok)
	}
}

func TestClient_LoginBadCredentials(t *testing.T) {
	creds := credentials.NewMemory(&oauth2.Token{AccessToken: "keep"})
	client, _ := newClient(t, creds)

	err := client.Login(context.Background(), "ana@example.com", "wrong")
	var apiErr *service.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if errors.Is(err, service.ErrUnauthorized) {
		t.Error("a failed login is not a session expiry")
	}
	if creds.ClearCount() != 0 {
		t.Error("a failed login must not clear the credential")
	}
}

func TestClient_Register(t *testing.T) {
	client, backend := newClient(t, credentials.NewMemory(nil))

	err := client.Register(context.Background(), service.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(backend.Registered) != 1 || backend.Registered[0].Name != "Ana" {
		t.Errorf("unexpected registrations %+v", backend.Registered)
	}
}

func TestClient_TransportError(t *testing.T) {
	backend := testutil.NewFakeBackend()
	url := backend.URL()
	httpClient := backend.Client()
	backend.Close()

	client := rest.NewWithHTTPClient(url, httpClient, credentials.NewMemory(nil), nil)
	_, err := client.ListLists(context.Background())

	var transportErr *service.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if transportErr.Op != "GET /to-do-lists" {
		t.Errorf("unexpected op %q", transportErr.Op)
	}
}

func TestClient_ServerErrorWithoutBody(t *testing.T) {
	client, backend := newClient(t, credentials.NewMemory(nil))
	backend.ListListsErr = errors.New("boom")

	_, err := client.ListLists(context.Background())
	var apiErr *service.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
	if apiErr.Message != "boom" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}
