// Package trace implements a Chrome Trace Event Format profiler, ported
// from profiling/measure_time.py. Output loads directly into
// chrome://tracing.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event is a single Chrome Trace Event Format record.
type Event struct {
	Name string                 `json:"name"`
	Cat  string                 `json:"cat"`
	Ph   string                 `json:"ph"` // 'B' begin, 'E' end, 'i' instant, 'M' metadata
	Ts   float64                `json:"ts"` // microseconds since Tracer start
	Tid  int64                  `json:"tid,omitempty"`
	Pid  int                    `json:"pid"`
	S    string                 `json:"s,omitempty"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Tracer collects trace events across goroutines. Use Get to obtain the
// process-wide singleton.
type Tracer struct {
	mu          sync.Mutex
	events      []Event
	enabled     bool
	start       time.Time
	outputFile  string
	threadNames map[int64]string
	processName string
	processID   int
}

var (
	once     sync.Once
	instance *Tracer
)

// Get returns the singleton Tracer, starting its clock on first call.
func Get() *Tracer {
	once.Do(func() {
		instance = &Tracer{
			enabled:     true,
			start:       time.Now(),
			outputFile:  "trace.json",
			threadNames: make(map[int64]string),
			processName: "Browser",
			processID:   1,
		}
	})
	return instance
}

// SetOutputFile sets the path Finish writes the trace JSON to.
func (t *Tracer) SetOutputFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outputFile = path
}

// SetThreadName labels tid in the trace viewer's thread list. Go has no
// stable native thread id, so callers pass a logical id of their own
// choosing (goroutine role, tab id, etc).
func (t *Tracer) SetThreadName(tid int64, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threadNames[tid] = name
}

func (t *Tracer) timestamp() float64 {
	return float64(time.Since(t.start).Microseconds())
}

func (t *Tracer) addEvent(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.events = append(t.events, e)
}

// Begin records a duration-begin event.
func (t *Tracer) Begin(name, category string, tid int64, args map[string]interface{}) {
	t.addEvent(Event{Name: name, Cat: category, Ph: "B", Ts: t.timestamp(), Tid: tid, Pid: t.processID, Args: args})
}

// End records a duration-end event.
func (t *Tracer) End(name, category string, tid int64) {
	t.addEvent(Event{Name: name, Cat: category, Ph: "E", Ts: t.timestamp(), Tid: tid, Pid: t.processID})
}

// Instant records a point-in-time event. scope is "t" (thread), "p"
// (process), or "g" (global).
func (t *Tracer) Instant(name, category, scope string, tid int64, args map[string]interface{}) {
	t.addEvent(Event{Name: name, Cat: category, Ph: "i", Ts: t.timestamp(), Tid: tid, Pid: t.processID, S: scope, Args: args})
}

func (t *Tracer) metadataEvents() []Event {
	meta := []Event{{Name: "process_name", Ph: "M", Pid: t.processID, Args: map[string]interface{}{"name": t.processName}}}
	for tid, name := range t.threadNames {
		meta = append(meta, Event{Name: "thread_name", Ph: "M", Pid: t.processID, Tid: tid, Args: map[string]interface{}{"name": name}})
	}
	return meta
}

type traceFile struct {
	TraceEvents       []Event                `json:"traceEvents"`
	DisplayTimeUnit   string                 `json:"displayTimeUnit"`
	SystemTraceEvents string                 `json:"systemTraceEvents"`
	OtherData         map[string]interface{} `json:"otherData"`
}

// Finish disables further recording and writes the collected trace to
// outputFile. Safe to call more than once; subsequent calls are no-ops.
func (t *Tracer) Finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return nil
	}
	t.enabled = false

	data := traceFile{
		TraceEvents:       append(t.metadataEvents(), t.events...),
		DisplayTimeUnit:   "ms",
		SystemTraceEvents: "SystemTraceData",
		OtherData:         map[string]interface{}{"version": "Browser Profiler v1.0"},
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.outputFile, b, 0o644); err != nil {
		return err
	}
	fmt.Printf("Trace saved to %s\n", t.outputFile)
	fmt.Println("Open chrome://tracing and load the file to view")
	return nil
}

// Clear discards collected events and resets the clock.
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
	t.start = time.Now()
}

// Span is the Go analogue of MeasureTime's context-manager/decorator
// usage: call Span at the top of a scope and defer the returned func.
//
//	defer trace.Span("layout", "layout", tid)()
func Span(name, category string, tid int64) func() {
	t := Get()
	t.Begin(name, category, tid, nil)
	return func() { t.End(name, category, tid) }
}
