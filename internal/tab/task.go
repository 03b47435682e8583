package tab

import "sync"

// Task is a single deferred callback: a setTimeout firing, an XHR
// completion, a scheduled navigation, ported from
// background/task.py's Task.
type Task struct {
	fn func()
}

// NewTask wraps fn as a one-shot Task.
func NewTask(fn func()) *Task { return &Task{fn: fn} }

// Run invokes the task's callback once and releases it, matching the
// original's discard-after-run (task_code = None; args = None).
func (t *Task) Run() {
	fn := t.fn
	t.fn = nil
	if fn != nil {
		fn()
	}
}

// TaskRunner is a tab's cooperative callback queue. Anything that
// would otherwise run on an arbitrary goroutine — a setTimeout firing,
// an XHR's onload, a script-scheduled navigation — is handed to
// Schedule instead, so it only ever runs from the tab's own loop
// goroutine, ported from background/task.py's TaskRunner.
type TaskRunner struct {
	mu    sync.Mutex
	tasks []*Task
}

// NewTaskRunner returns an empty TaskRunner.
func NewTaskRunner() *TaskRunner { return &TaskRunner{} }

// Schedule enqueues fn to run on a future RunOne call.
func (r *TaskRunner) Schedule(fn func()) {
	r.mu.Lock()
	r.tasks = append(r.tasks, NewTask(fn))
	r.mu.Unlock()
}

// RunOne pops and runs the oldest pending task, if any, reporting
// whether a task ran.
func (r *TaskRunner) RunOne() bool {
	r.mu.Lock()
	if len(r.tasks) == 0 {
		r.mu.Unlock()
		return false
	}
	task := r.tasks[0]
	r.tasks = r.tasks[1:]
	r.mu.Unlock()
	task.Run()
	return true
}
