package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"todo/internal/service"
)

// Request performs the network half of an operation. It is safe to run on
// any goroutine; it only reads values captured when it was created.
type Request func(ctx context.Context) Result

// Result is the outcome of a Request, to be passed to Controller.Resolve.
type Result struct {
	op     opKind
	id     ID
	listID ID
	prev   bool
	list   service.TodoList
	task   service.Task
	lists  []service.TodoList
	err    error
}

// Err returns the error carried by the result, if any.
func (r Result) Err() error { return r.err }

type opKind int

const (
	opRefused opKind = iota
	opRefresh
	opCreateList
	opDeleteList
	opCreateTask
	opToggleTask
	opDeleteTask
)

func (k opKind) String() string {
	switch k {
	case opRefresh:
		return "refresh"
	case opCreateList:
		return "create-list"
	case opDeleteList:
		return "delete-list"
	case opCreateTask:
		return "create-task"
	case opToggleTask:
		return "toggle-task"
	case opDeleteTask:
		return "delete-task"
	default:
		return "refused"
	}
}

// Controller owns local state. It is not safe for concurrent use: all
// methods except a returned Request must be called from one goroutine.
type Controller struct {
	svc service.Service
	now func() time.Time
	log *slog.Logger

	lists      []List
	lastLocal  int64
	listDraft  string
	taskDrafts map[ID]string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for placeholder ids.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger for resolution tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController creates a Controller with empty state.
func NewController(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:        svc,
		now:        time.Now,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		taskDrafts: make(map[ID]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lists returns a copy of local state.
func (c *Controller) Lists() []List {
	out := make([]List, len(c.lists))
	for i, l := range c.lists {
		out[i] = l.clone()
	}
	return out
}

// FindList returns the list with the given id.
func (c *Controller) FindList(id ID) (List, bool) {
	i := c.listIndex(id)
	if i < 0 {
		return List{}, false
	}
	return c.lists[i].clone(), true
}

// FindTask returns the task with the given id.
func (c *Controller) FindTask(id ID) (Task, bool) {
	li, ti := c.taskIndex(id)
	if li < 0 {
		return Task{}, false
	}
	return c.lists[li].Tasks[ti], true
}

// ListDraft returns the pending new-list name.
func (c *Controller) ListDraft() string { return c.listDraft }

// SetListDraft records the new-list name being typed.
func (c *Controller) SetListDraft(s string) { c.listDraft = s }

// TaskDraft returns the new-task text being typed for a list.
func (c *Controller) TaskDraft(listID ID) string { return c.taskDrafts[listID] }

// SetTaskDraft records the new-task text being typed for a list.
func (c *Controller) SetTaskDraft(listID ID, s string) {
	if s == "" {
		delete(c.taskDrafts, listID)
		return
	}
	c.taskDrafts[listID] = s
}

// Reset drops all local state.
func (c *Controller) Reset() {
	c.lists = nil
	c.listDraft = ""
	c.taskDrafts = make(map[ID]string)
}

// nextLocal returns a placeholder id from the wall clock in milliseconds,
// strictly greater than any it returned before.
func (c *Controller) nextLocal() Pending {
	n := c.now().UnixMilli()
	if n <= c.lastLocal {
		n = c.lastLocal + 1
	}
	c.lastLocal = n
	return Pending{Local: n}
}

// Refresh fetches the authoritative state. Resolving it replaces local
// state wholesale.
func (c *Controller) Refresh() Request {
	svc := c.svc
	return func(ctx context.Context) Result {
		lists, err := svc.ListLists(ctx)
		return Result{op: opRefresh, lists: lists, err: err}
	}
}

// CreateList appends a list with a placeholder id and returns the request
// that creates it on the server. A blank name is a no-op and returns nil.
func (c *Controller) CreateList(name string) Request {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	name = strings.TrimSpace(name)

	id := c.nextLocal()
	stamp := c.now().UTC().Format(time.RFC3339)
	c.lists = append(c.lists, List{
		ID:        id,
		Name:      name,
		CreatedAt: stamp,
		UpdatedAt: stamp,
		Tasks:     []Task{},
	})
	c.listDraft = ""

	svc := c.svc
	return func(ctx context.Context) Result {
		created, err := svc.CreateList(ctx, name)
		if err == nil && created.ID == 0 {
			err = ErrNoServerID
		}
		return Result{op: opCreateList, id: id, list: created, err: err}
	}
}

// DeleteList removes a list locally and returns the request that deletes it
// on the server.
func (c *Controller) DeleteList(id ID) Request {
	i := c.listIndex(id)
	if i < 0 {
		return refuse("list not found")
	}
	server, ok := ServerID(id)
	if !ok {
		return refuse("list is still being saved")
	}

	c.lists = append(c.lists[:i:i], c.lists[i+1:]...)
	delete(c.taskDrafts, id)

	svc := c.svc
	return func(ctx context.Context) Result {
		err := svc.DeleteList(ctx, server)
		return Result{op: opDeleteList, id: id, err: err}
	}
}

// CreateTask appends an incomplete task with a placeholder id to a list
// and returns the request that creates it on the server. A blank
// description is a no-op and returns nil.
func (c *Controller) CreateTask(listID ID, description string) Request {
	if strings.TrimSpace(description) == "" {
		return nil
	}
	description = strings.TrimSpace(description)

	i := c.listIndex(listID)
	if i < 0 {
		return refuse("list not found")
	}
	serverList, ok := ServerID(listID)
	if !ok {
		return refuse("list is still being saved")
	}

	id := c.nextLocal()
	stamp := c.now().UTC().Format(time.RFC3339)
	c.lists[i].Tasks = append(c.lists[i].Tasks, Task{
		ID:          id,
		ListID:      listID,
		Description: description,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	})
	delete(c.taskDrafts, listID)

	svc := c.svc
	return func(ctx context.Context) Result {
		created, err := svc.CreateTask(ctx, serverList, description)
		if err == nil && created.ID == 0 {
			err = ErrNoServerID
		}
		return Result{op: opCreateTask, id: id, listID: listID, task: created, err: err}
	}
}

// ToggleTask flips a task's completion flag from current and returns the
// request that stores the new flag on the server.
func (c *Controller) ToggleTask(id ID, current bool) Request {
	li, ti := c.taskIndex(id)
	if li < 0 {
		return refuse("task not found")
	}
	server, ok := ServerID(id)
	if !ok {
		return refuse("task is still being saved")
	}

	c.lists[li].Tasks[ti].Completed = !current

	svc := c.svc
	return func(ctx context.Context) Result {
		err := svc.SetTaskCompleted(ctx, server, !current)
		return Result{op: opToggleTask, id: id, prev: current, err: err}
	}
}

// DeleteTask removes a task locally and returns the request that deletes it
// on the server.
func (c *Controller) DeleteTask(id ID) Request {
	li, ti := c.taskIndex(id)
	if li < 0 {
		return refuse("task not found")
	}
	server, ok := ServerID(id)
	if !ok {
		return refuse("task is still being saved")
	}

	tasks := c.lists[li].Tasks
	c.lists[li].Tasks = append(tasks[:ti:ti], tasks[ti+1:]...)

	svc := c.svc
	return func(ctx context.Context) Result {
		err := svc.DeleteTask(ctx, server)
		return Result{op: opDeleteTask, id: id, err: err}
	}
}

// Resolve applies the outcome of a request to local state.
func (c *Controller) Resolve(res Result) Event {
	if errors.Is(res.err, service.ErrUnauthorized) {
		c.log.Debug("session rejected", "op", res.op)
		c.Reset()
		return Event{
			Notice:       Notice{Kind: NoticeSessionExpired, Text: sessionExpiredText, Err: res.err},
			Unauthorized: true,
		}
	}
	if res.err != nil {
		c.log.Debug("request failed", "op", res.op, "id", idString(res.id), "err", res.err)
	}

	switch res.op {
	case opRefresh:
		if res.err != nil {
			return Event{Notice: failure(res.err, "Could not load lists. Please try again.")}
		}
		c.lists = fromService(res.lists)
		return Event{}

	case opCreateList:
		if res.err != nil {
			c.removeList(res.id)
			return Event{Notice: failure(res.err, "Could not create list. Please try again.")}
		}
		c.confirmList(res.id, res.list)
		return Event{Notice: success("List created.")}

	case opDeleteList:
		if res.err != nil {
			return Event{
				Notice: failure(res.err, "Could not delete list. Please try again."),
				Next:   c.Refresh(),
			}
		}
		return Event{Notice: success("List deleted.")}

	case opCreateTask:
		if res.err != nil {
			c.removeTask(res.id)
			return Event{Notice: failure(res.err, "Could not create task. Please try again.")}
		}
		c.confirmTask(res.id, res.task)
		return Event{Notice: success("Task created.")}

	case opToggleTask:
		if res.err != nil {
			if li, ti := c.taskIndex(res.id); li >= 0 {
				c.lists[li].Tasks[ti].Completed = res.prev
			}
			return Event{Notice: failure(res.err, "Could not update task. Please try again.")}
		}
		return Event{Notice: success("Task updated.")}

	case opDeleteTask:
		if res.err != nil {
			return Event{
				Notice: failure(res.err, "Could not delete task. Please try again."),
				Next:   c.Refresh(),
			}
		}
		return Event{Notice: success("Task deleted.")}

	default:
		return Event{Notice: failure(res.err, "Request refused.")}
	}
}

// Do runs req and resolves it, following up with any request the resolution
// asks for. It returns the first event with the error notices of failed
// follow-ups appended; Unauthorized is set if any step was rejected. A nil
// req returns an empty Event.
func (c *Controller) Do(ctx context.Context, req Request) Event {
	if req == nil {
		return Event{}
	}
	first := c.Resolve(req(ctx))
	next := first.Next
	first.Next = nil
	for next != nil {
		ev := c.Resolve(next(ctx))
		if ev.Unauthorized {
			return ev
		}
		if ev.Notice.Kind == NoticeError {
			first.Notice = first.Notice.Append(ev.Notice)
		}
		next = ev.Next
	}
	return first
}

func refuse(reason string) Request {
	return func(ctx context.Context) Result {
		return Result{op: opRefused, err: &RefusedError{Reason: reason}}
	}
}

// confirmList swaps a placeholder id for the server's in place. The list
// may be gone if a refresh replaced state meanwhile.
func (c *Controller) confirmList(id ID, created service.TodoList) {
	i := c.listIndex(id)
	if i < 0 {
		return
	}
	confirmed := Confirmed{Server: created.ID}
	l := &c.lists[i]
	l.ID = confirmed
	if created.CreatedAt != "" {
		l.CreatedAt = created.CreatedAt
	}
	if created.UpdatedAt != "" {
		l.UpdatedAt = created.UpdatedAt
	}
	for j := range l.Tasks {
		l.Tasks[j].ListID = confirmed
	}
	if draft, ok := c.taskDrafts[id]; ok {
		delete(c.taskDrafts, id)
		c.taskDrafts[confirmed] = draft
	}
}

func (c *Controller) confirmTask(id ID, created service.Task) {
	li, ti := c.taskIndex(id)
	if li < 0 {
		return
	}
	t := &c.lists[li].Tasks[ti]
	t.ID = Confirmed{Server: created.ID}
	if created.CreatedAt != "" {
		t.CreatedAt = created.CreatedAt
	}
	if created.UpdatedAt != "" {
		t.UpdatedAt = created.UpdatedAt
	}
}

func (c *Controller) removeList(id ID) {
	if i := c.listIndex(id); i >= 0 {
		c.lists = append(c.lists[:i:i], c.lists[i+1:]...)
	}
}

func (c *Controller) removeTask(id ID) {
	li, ti := c.taskIndex(id)
	if li < 0 {
		return
	}
	tasks := c.lists[li].Tasks
	c.lists[li].Tasks = append(tasks[:ti:ti], tasks[ti+1:]...)
}

func (c *Controller) listIndex(id ID) int {
	for i, l := range c.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) taskIndex(id ID) (int, int) {
	for li, l := range c.lists {
		for ti, t := range l.Tasks {
			if t.ID == id {
				return li, ti
			}
		}
	}
	return -1, -1
}

func idString(id ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
