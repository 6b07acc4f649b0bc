// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"todo/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TodoList
	nextID int64
	calls  map[string]int

	// Accounts maps email to password for Login.
	Accounts map[string]string

	// Registered records successful Register calls.
	Registered []service.RegisterRequest

	// LoggedIn is set by a successful Login.
	LoggedIn bool

	// Error injection for testing
	ListListsErr        error
	CreateListErr       error
	DeleteListErr       error
	CreateTaskErr       error
	SetTaskCompletedErr error
	DeleteTaskErr       error
	LoginErr            error
	RegisterErr         error
}

// NewFakeService creates an empty FakeService. Server ids start at 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:   1,
		calls:    make(map[string]int),
		Accounts: make(map[string]string),
	}
}

// AddList adds a list and returns its id.
func (f *FakeService) AddList(name string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	f.lists = append(f.lists, service.TodoList{ID: id, Name: name, Tasks: []service.Task{}})
	return id
}

// AddTask adds a task to a list and returns its id.
func (f *FakeService) AddTask(listID int64, description string, completed bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	i := f.listIndex(listID)
	if i < 0 {
		return 0
	}
	f.lists[i].Tasks = append(f.lists[i].Tasks, service.Task{
		ID:          id,
		ListID:      listID,
		Description: description,
		Completed:   service.Flag(completed),
	})
	return id
}

// AddAccount registers credentials accepted by Login.
func (f *FakeService) AddAccount(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Accounts[email] = password
}

// Calls returns how many times a method was called.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Snapshot returns the server-side lists.
func (f *FakeService) Snapshot() []service.TodoList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneLists(f.lists)
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TodoList, error) {
	f.record("ListLists")
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneLists(f.lists), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, name string) (service.TodoList, error) {
	f.record("CreateList")
	if f.CreateListErr != nil {
		return service.TodoList{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := service.TodoList{ID: f.allocID(), Name: name, Tasks: []service.Task{}}
	f.lists = append(f.lists, l)
	return l, nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID int64) error {
	f.record("DeleteList")
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return ErrNotFound
	}
	f.lists = append(f.lists[:i], f.lists[i+1:]...)
	return nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID int64, description string) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	t := service.Task{ID: f.allocID(), ListID: listID, Description: description}
	f.lists[i].Tasks = append(f.lists[i].Tasks, t)
	return t, nil
}

// SetTaskCompleted implements service.Service.
func (f *FakeService) SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error {
	f.record("SetTaskCompleted")
	if f.SetTaskCompletedErr != nil {
		return f.SetTaskCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for li := range f.lists {
		for ti := range f.lists[li].Tasks {
			if f.lists[li].Tasks[ti].ID == taskID {
				f.lists[li].Tasks[ti].Completed = service.Flag(completed)
				return nil
			}
		}
	}
	return ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID int64) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for li := range f.lists {
		tasks := f.lists[li].Tasks
		for ti := range tasks {
			if tasks[ti].ID == taskID {
				f.lists[li].Tasks = append(tasks[:ti], tasks[ti+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) error {
	f.record("Login")
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.Accounts[email]; !ok || pw != password {
		return &service.APIError{Status: 401, Message: "Invalid credentials"}
	}
	f.LoggedIn = true
	return nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Registered = append(f.Registered, req)
	f.Accounts[req.Email] = req.Password
	return nil
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *FakeService) allocID() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *FakeService) listIndex(id int64) int {
	for i, l := range f.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneLists(lists []service.TodoList) []service.TodoList {
	out := make([]service.TodoList, len(lists))
	for i, l := range lists {
		l.Tasks = append([]service.Task(nil), l.Tasks...)
		out[i] = l
	}
	return out
}
