package deposit

import (
	"sort"
	"sync"
	"time"
)

// Registry tracks deposit tasks by external ID. Finished tasks are kept for
// the retention window so their outcome stays queryable.
type Registry struct {
	mu        sync.Mutex
	tasks     map[string]*Task
	retention time.Duration
}

// NewRegistry creates a new task registry
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		tasks:     make(map[string]*Task),
		retention: retention,
	}
}

// Add registers a task, pruning finished tasks past retention
func (r *Registry) Add(task *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(time.Now())
	r.tasks[task.handle.ExternalID] = task
}

// Get returns the task polling externalID
func (r *Registry) Get(externalID string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[externalID]
	return task, ok
}

// List returns snapshots of all tracked tasks, newest first
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	tasks := make([]*Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	r.mu.Unlock()

	snapshots := make([]Snapshot, 0, len(tasks))
	for _, task := range tasks {
		snapshots = append(snapshots, task.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartedAt.After(snapshots[j].StartedAt)
	})
	return snapshots
}

// Active returns the running tasks of a chat
func (r *Registry) Active(chat string) []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*Task
	for _, task := range r.tasks {
		if task.chat == chat && !task.State().Final() {
			active = append(active, task)
		}
	}
	return active
}

// CancelChat cancels every running task of a chat and returns how many were stopped
func (r *Registry) CancelChat(chat string) int {
	tasks := r.Active(chat)
	for _, task := range tasks {
		task.Cancel()
	}
	return len(tasks)
}

// CancelAll cancels every running task
func (r *Registry) CancelAll() {
	r.mu.Lock()
	tasks := make([]*Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	r.mu.Unlock()

	for _, task := range tasks {
		task.Cancel()
	}
}

func (r *Registry) pruneLocked(now time.Time) {
	for id, task := range r.tasks {
		snap := task.Snapshot()
		if snap.FinishedAt != nil && now.Sub(*snap.FinishedAt) > r.retention {
			delete(r.tasks, id)
		}
	}
}
