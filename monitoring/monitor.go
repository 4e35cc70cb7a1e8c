// Package monitoring turns a running simulation into a small web server so
// that its state can be inspected and controlled from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/silica-hdl/silica/hdl"
	"github.com/silica-hdl/silica/monitoring/web"
	"github.com/silica-hdl/silica/sim"
)

// A Kernel is the part of the event kernel the monitor drives.
type Kernel interface {
	sim.TimeTeller

	Pause()
	Continue()
	Run() error
}

// A SignalReader reads the current value of a signal.
type SignalReader interface {
	SignalValue(sig *hdl.Signal) uint64
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	kernel     Kernel
	reader     SignalReader
	processes  []*sim.Process
	signals    []*hdl.Signal
	portNumber int
	dashboard  bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithDashboard makes the monitor open the dashboard page in a browser when
// the server starts.
func (m *Monitor) WithDashboard() *Monitor {
	m.dashboard = true

	return m
}

// RegisterKernel registers the kernel that drives the simulation.
func (m *Monitor) RegisterKernel(k Kernel) {
	m.kernel = k
}

// RegisterSignalReader registers the evaluator state that signal values are
// read from.
func (m *Monitor) RegisterSignalReader(r SignalReader) {
	m.reader = r
}

// RegisterProcess registers a process to be monitored.
func (m *Monitor) RegisterProcess(p *sim.Process) {
	m.processes = append(m.processes, p)
}

// RegisterSignal registers a signal to be monitored.
func (m *Monitor) RegisterSignal(s *hdl.Signal) {
	m.signals = append(m.signals, s)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/pause", m.pauseKernel)
	r.HandleFunc("/api/continue", m.continueKernel)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/wake/{name}", m.wake)
	r.HandleFunc("/api/list_processes", m.listProcesses)
	r.HandleFunc("/api/process/{name}", m.listProcessDetails)
	r.HandleFunc("/api/list_signals", m.listSignals)
	r.HandleFunc("/api/signal/{name}", m.reportSignal)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.dashboard {
		err = browser.OpenURL(url)
		dieOnErr(err)
	}
}

func (m *Monitor) pauseKernel(w http.ResponseWriter, _ *http.Request) {
	m.kernel.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueKernel(w http.ResponseWriter, _ *http.Request) {
	m.kernel.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.kernel.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.15f}", now.Seconds())
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.kernel.Run()
		if err != nil {
			panic(err)
		}
	}()
}

type waker interface {
	Wake(p *sim.Process)
}

func (m *Monitor) wake(w http.ResponseWriter, r *http.Request) {
	procName := mux.Vars(r)["name"]

	proc := m.findProcessOr404(w, procName)
	if proc == nil {
		return
	}

	wakingKernel, ok := m.kernel.(waker)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	wakingKernel.Wake(proc)
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listProcesses(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, p := range m.processes {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", p.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listProcessDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	proc := m.findProcessOr404(w, name)
	if proc == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(proc)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) listSignals(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, s := range m.signals {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", s.Name())
	}
	fmt.Fprint(w, "]")
}

type signalRsp struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Value uint64 `json:"value"`
}

func (m *Monitor) reportSignal(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var signal *hdl.Signal
	for _, s := range m.signals {
		if s.Name() == name {
			signal = s
		}
	}

	if signal == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Signal not found"))
		dieOnErr(err)
		return
	}

	rsp := signalRsp{
		Name:  signal.Name(),
		Width: signal.Width(),
		Value: m.reader.SignalValue(signal),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) findProcessOr404(
	w http.ResponseWriter,
	name string,
) *sim.Process {
	var proc *sim.Process
	for _, p := range m.processes {
		if p.Name() == name {
			proc = p
		}
	}

	if proc == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Process not found"))
		dieOnErr(err)
	}

	return proc
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
