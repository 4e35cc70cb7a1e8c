package tracing

// A Tracer can collect task traces.
type Tracer interface {
	// StartTask marks the beginning of a process run.
	StartTask(task Task)

	// StepTask records one interpreted command of a running task.
	StepTask(task Task)

	// EndTask marks the end of a process run.
	EndTask(task Task)
}
