// Package tracing collects traces of process runs and the commands they
// yield.
package tracing

// A TaskStep is one command interpreted during a task.
type TaskStep struct {
	Time float64 `json:"time"`
	What string  `json:"what"`
}

// A Task is one run of a process: from the instant the kernel resumes it to
// the instant it hands control back.
type Task struct {
	ID        string     `json:"id"`
	ProcessID string     `json:"process_id"`
	Where     string     `json:"where"`
	Kind      string     `json:"kind"`
	StartTime float64    `json:"start_time"`
	EndTime   float64    `json:"end_time"`
	Steps     []TaskStep `json:"steps"`
}

// A TaskFilter is a function that can filter interesting tasks. If this
// function returns true, the task is considered useful.
type TaskFilter func(t Task) bool
