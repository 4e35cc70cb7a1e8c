package tracing

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter is a tracer that stores completed tasks in a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File

	tasks      []Task
	bufferSize int
}

// NewCSVTraceWriter creates a CSVTraceWriter writing to path (without the
// .csv suffix). An empty path picks a generated name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing CSV file. The file must not already exist.
func (t *CSVTraceWriter) Init() {
	if t.path == "" {
		t.path = "silica_trace_" + xid.New().String()
	}

	filename := t.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "ID, ProcessID, Where, Kind, Start, End, Steps\n")

	atexit.Register(func() {
		t.Flush()
		err := t.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// StartTask does nothing; only completed tasks are written.
func (t *CSVTraceWriter) StartTask(_ Task) {
}

// StepTask does nothing; steps are written with their completed task.
func (t *CSVTraceWriter) StepTask(_ Task) {
}

// EndTask buffers a completed task for writing.
func (t *CSVTraceWriter) EndTask(task Task) {
	t.tasks = append(t.tasks, task)

	if len(t.tasks) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes all the buffered tasks into the CSV file.
func (t *CSVTraceWriter) Flush() {
	for _, task := range t.tasks {
		fmt.Fprintf(t.file, "%s, %s, %s, %s, %.15f, %.15f, %d\n",
			task.ID, task.ProcessID, task.Where, task.Kind,
			task.StartTime, task.EndTime, len(task.Steps))
	}

	t.tasks = nil
}
