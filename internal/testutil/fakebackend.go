package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"todo/internal/service"
)

// FakeBackend serves the to-do REST API over HTTP, storing data in a
// FakeService. Error injection on the FakeService is rendered as HTTP
// errors: an *service.APIError keeps its status and body, anything else
// becomes a 500.
type FakeBackend struct {
	*FakeService

	server *httptest.Server

	mu          sync.Mutex
	token       string
	requireAuth bool
	requests    []*http.Request
}

// NewFakeBackend starts a backend. Close it with t.Cleanup(b.Close).
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		FakeService: NewFakeService(),
		token:       "test-token",
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(b.recordMiddleware)

	api.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(b.authMiddleware)
	authed.HandleFunc("/to-do-lists", b.handleListLists).Methods(http.MethodGet)
	authed.HandleFunc("/to-do-lists", b.handleCreateList).Methods(http.MethodPost)
	authed.HandleFunc("/to-do-lists/{id:[0-9]+}", b.handleDeleteList).Methods(http.MethodDelete)
	authed.HandleFunc("/tasks", b.handleCreateTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/{id:[0-9]+}", b.handleUpdateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id:[0-9]+}", b.handleDeleteTask).Methods(http.MethodDelete)

	b.server = httptest.NewServer(r)
	return b
}

// URL returns the API base URL.
func (b *FakeBackend) URL() string { return b.server.URL + "/api" }

// Client returns an HTTP client for the server.
func (b *FakeBackend) Client() *http.Client { return b.server.Client() }

// Close shuts the server down.
func (b *FakeBackend) Close() { b.server.Close() }

// Token returns the bearer token issued by /login.
func (b *FakeBackend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// SetToken changes the issued token. Sessions holding the old one are
// rejected while auth is required.
func (b *FakeBackend) SetToken(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = tok
}

// SetRequireAuth makes every list and task route demand the token.
func (b *FakeBackend) SetRequireAuth(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireAuth = on
}

// Requests returns the requests received so far.
func (b *FakeBackend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Request(nil), b.requests...)
}

// LastRequest returns the most recent request, or nil.
func (b *FakeBackend) LastRequest() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return nil
	}
	return b.requests[len(b.requests)-1]
}

func (b *FakeBackend) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(r.Context()))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		rejected := b.requireAuth && r.Header.Get("Authorization") != "Bearer "+b.token
		b.mu.Unlock()
		if rejected {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := b.FakeService.Login(r.Context(), body.Email, body.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": b.Token()})
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body service.RegisterRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Password != body.PasswordConfirmation {
		writeError(w, validation("password", "The password field confirmation does not match."))
		return
	}
	if err := b.FakeService.Register(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (b *FakeBackend) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := b.FakeService.ListLists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (b *FakeBackend) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, validation("name", "The name field is required."))
		return
	}
	created, err := b.FakeService.CreateList(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (b *FakeBackend) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := b.FakeService.DeleteList(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
		ListID      int64  `json:"to_do_list_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, validation("description", "The description field is required."))
		return
	}
	created, err := b.FakeService.CreateTask(r.Context(), body.ListID, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (b *FakeBackend) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsCompleted service.Flag `json:"is_completed"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := b.FakeService.SetTaskCompleted(r.Context(), pathID(r), bool(body.IsCompleted)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": pathID(r), "is_completed": body.IsCompleted})
}

func (b *FakeBackend) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := b.FakeService.DeleteTask(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validation(field, msg string) *service.APIError {
	return &service.APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: msg,
		Errors:  map[string][]string{field: {msg}},
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed JSON"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *service.APIError
	switch {
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status == 0 {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, apiErr)
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
