// Package board holds the local mirror of the server's lists and tasks and
// applies optimistic changes to it.
//
// Every mutation is split in two halves. The begin half (CreateList,
// ToggleTask, ...) runs on the caller's loop, changes local state at once and
// returns a Request. The Request does the network call and may run anywhere;
// it never touches state. Its Result is handed back to Resolve on the loop,
// which confirms or rolls back the change.
package board

import "strconv"

// ID identifies a list or task in local state. It is either Pending, for an
// entity the server has not confirmed yet, or Confirmed.
type ID interface {
	String() string
	isID()
}

// Pending is a client-side placeholder id.
type Pending struct {
	Local int64
}

// Confirmed is an id assigned by the server.
type Confirmed struct {
	Server int64
}

func (Pending) isID()   {}
func (Confirmed) isID() {}

func (p Pending) String() string   { return "pending-" + strconv.FormatInt(p.Local, 10) }
func (c Confirmed) String() string { return strconv.FormatInt(c.Server, 10) }

// ServerID returns the server id behind id, or false if id is not confirmed.
func ServerID(id ID) (int64, bool) {
	c, ok := id.(Confirmed)
	if !ok {
		return 0, false
	}
	return c.Server, true
}

// IsPending reports whether id is a placeholder.
func IsPending(id ID) bool {
	_, ok := id.(Pending)
	return ok
}
