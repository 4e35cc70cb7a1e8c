package tracing

import (
	"github.com/silica-hdl/silica/datarecording"
)

// taskEntry is the flattened task row stored in the database. The task's
// Where field is stored as Location; WHERE is a reserved word in SQL.
type taskEntry struct {
	ID        string
	ProcessID string
	Location  string
	Kind      string
	StartTime float64
	EndTime   float64
}

// stepEntry is one command of a task, stored in its own table.
type stepEntry struct {
	TaskID string
	Time   float64
	What   string
}

// A DBTracer stores completed tasks and their steps with a DataRecorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
}

// TaskTable is the name of the table holding run tasks.
const TaskTable = "trace"

// StepTable is the name of the table holding the commands of each task.
const StepTable = "trace_steps"

// NewDBTracer creates a DBTracer backed by recorder.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{recorder: recorder}

	recorder.CreateTable(TaskTable, taskEntry{})
	recorder.CreateTable(StepTable, stepEntry{})

	return t
}

// StartTask does nothing; only completed tasks are recorded.
func (t *DBTracer) StartTask(_ Task) {
}

// StepTask does nothing; steps are recorded with their completed task.
func (t *DBTracer) StepTask(_ Task) {
}

// EndTask records a completed task and its steps.
func (t *DBTracer) EndTask(task Task) {
	t.recorder.InsertData(TaskTable, taskEntry{
		ID:        task.ID,
		ProcessID: task.ProcessID,
		Location:  task.Where,
		Kind:      task.Kind,
		StartTime: task.StartTime,
		EndTime:   task.EndTime,
	})

	for _, step := range task.Steps {
		t.recorder.InsertData(StepTable, stepEntry{
			TaskID: task.ID,
			Time:   step.Time,
			What:   step.What,
		})
	}
}
