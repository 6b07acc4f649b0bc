// Package service defines the backend-agnostic interface for list and task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Task is a single task as the backend reports it.
type Task struct {
	ID          int64  `json:"id"`
	ListID      int64  `json:"to_do_list_id"`
	Description string `json:"description"`
	Completed   Flag   `json:"is_completed"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// TodoList is a list with its tasks nested in server order.
type TodoList struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Tasks     []Task `json:"tasks"`
}

// RegisterRequest carries the fields of the registration form.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Flag is a completion flag. The backend stores it as 0/1 but some
// endpoints echo JSON booleans, so both forms decode.
type Flag bool

// MarshalJSON encodes the flag as 0 or 1.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts 0/1, "0"/"1", true/false and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "1", `"1"`, "true":
		*f = true
		return nil
	case "0", `"0"`, "false", "null", `""`:
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid completion flag: %s", data)
	}
	*f = n != 0
	return nil
}
