package board

import "todo/internal/service"

// Task is a task in local state.
type Task struct {
	ID          ID
	ListID      ID
	Description string
	Completed   bool
	CreatedAt   string
	UpdatedAt   string
}

// List is a list in local state with its tasks in display order.
type List struct {
	ID        ID
	Name      string
	CreatedAt string
	UpdatedAt string
	Tasks     []Task
}

// CompletedCount returns how many tasks in the list are completed.
func (l List) CompletedCount() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func (l List) clone() List {
	l.Tasks = append([]Task(nil), l.Tasks...)
	return l
}

// fromService converts the server's view into local state. Nested tasks
// are attached to their parent list regardless of to_do_list_id.
func fromService(lists []service.TodoList) []List {
	out := make([]List, 0, len(lists))
	for _, sl := range lists {
		l := List{
			ID:        Confirmed{Server: sl.ID},
			Name:      sl.Name,
			CreatedAt: sl.CreatedAt,
			UpdatedAt: sl.UpdatedAt,
			Tasks:     make([]Task, 0, len(sl.Tasks)),
		}
		for _, st := range sl.Tasks {
			l.Tasks = append(l.Tasks, Task{
				ID:          Confirmed{Server: st.ID},
				ListID:      l.ID,
				Description: st.Description,
				Completed:   bool(st.Completed),
				CreatedAt:   st.CreatedAt,
				UpdatedAt:   st.UpdatedAt,
			})
		}
		out = append(out, l)
	}
	return out
}
