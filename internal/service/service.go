package service

import "context"

// Service defines the interface for to-do backend operations.
// All HTTP traffic goes through this interface; commands and the
// board controller never build requests themselves.
type Service interface {
	// ListLists returns every list with its tasks, in server order.
	ListLists(ctx context.Context) ([]TodoList, error)

	// CreateList creates a list and returns it with its server id.
	CreateList(ctx context.Context, name string) (TodoList, error)

	// DeleteList deletes a list by id.
	DeleteList(ctx context.Context, listID int64) error

	// CreateTask creates a task in a list and returns it with its server id.
	CreateTask(ctx context.Context, listID int64, description string) (Task, error)

	// SetTaskCompleted sets a task's completion flag.
	SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error

	// DeleteTask deletes a task by id.
	DeleteTask(ctx context.Context, taskID int64) error

	// Login exchanges email and password for a session token and stores it.
	Login(ctx context.Context, email, password string) error

	// Register creates an account. It does not log in.
	Register(ctx context.Context, req RegisterRequest) error
}
