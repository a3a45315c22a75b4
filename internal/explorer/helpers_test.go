package explorer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/storage"
)

// ---------------------------------------------------------------------------
// Fake clock: timers fire synchronously from Advance.
// ---------------------------------------------------------------------------

type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			t.f()
		}
	}
}

// ---------------------------------------------------------------------------
// Fake editors.
// ---------------------------------------------------------------------------

type fakeHighlight struct{ on bool }

func (h *fakeHighlight) SetHighlighted(on bool) { h.on = on }

type fakeMarker struct {
	Marker
	fakeHighlight
}

type fakeSpan struct {
	Span
	events SpanEvents
	fakeHighlight
}

type fakeEditor struct {
	text        string
	classes     map[int][]string
	markers     map[string]map[int]*fakeMarker
	spans       []*fakeSpan
	lineNumbers bool
	gutters     []string
	scrolled    []int

	// mutations counts every call that changes the view.
	mutations int
}

func newFakeEditor() *fakeEditor {
	e := &fakeEditor{lineNumbers: true}
	e.reset()
	return e
}

func (e *fakeEditor) reset() {
	e.classes = map[int][]string{}
	e.markers = map[string]map[int]*fakeMarker{}
	e.spans = nil
}

func (e *fakeEditor) Text() string { return e.text }

func (e *fakeEditor) SetText(text string) {
	e.mutations++
	e.text = text
	e.markers = map[string]map[int]*fakeMarker{}
	e.spans = nil
}

func (e *fakeEditor) AddLineClass(line int, class string) {
	e.mutations++
	e.classes[line] = append(e.classes[line], class)
}

func (e *fakeEditor) ClearLineClasses() {
	e.mutations++
	e.classes = map[int][]string{}
}

func (e *fakeEditor) SetGutterMarker(line int, gutter string, marker Marker) Highlighter {
	e.mutations++
	if e.markers[gutter] == nil {
		e.markers[gutter] = map[int]*fakeMarker{}
	}
	m := &fakeMarker{Marker: marker}
	e.markers[gutter][line] = m
	return m
}

func (e *fakeEditor) MarkSpan(span Span, events SpanEvents) Highlighter {
	e.mutations++
	s := &fakeSpan{Span: span, events: events}
	e.spans = append(e.spans, s)
	return s
}

func (e *fakeEditor) SetGutters(lineNumbers bool, gutters ...string) {
	e.mutations++
	e.lineNumbers = lineNumbers
	e.gutters = gutters
}

func (e *fakeEditor) ScrollToLine(line int) { e.scrolled = append(e.scrolled, line) }

func (e *fakeEditor) lines() []string { return strings.Split(e.text, "\n") }

type fakeWidget struct {
	line    int
	diag    diag.Diagnostic
	removed bool
}

func (w *fakeWidget) Remove() { w.removed = true }

type fakeSource struct {
	*fakeEditor
	selection disasm.LineRange
	widgets   []*fakeWidget
}

func newFakeSource() *fakeSource { return &fakeSource{fakeEditor: newFakeEditor()} }

func (s *fakeSource) SetSelection(lines disasm.LineRange) { s.selection = lines }

func (s *fakeSource) AddLineWidget(line int, d diag.Diagnostic) LineWidget {
	w := &fakeWidget{line: line, diag: d}
	s.widgets = append(s.widgets, w)
	return w
}

func (s *fakeSource) activeWidgets() []*fakeWidget {
	var active []*fakeWidget
	for _, w := range s.widgets {
		if !w.removed {
			active = append(active, w)
		}
	}
	return active
}

type fakeOutput struct {
	entries []diag.Diagnostic
	clears  int
}

func (o *fakeOutput) Clear() {
	o.clears++
	o.entries = nil
}

func (o *fakeOutput) Append(d diag.Diagnostic) { o.entries = append(o.entries, d) }

// ---------------------------------------------------------------------------
// Fake compile service.
// ---------------------------------------------------------------------------

type fakeService struct {
	mu      sync.Mutex
	calls   []compile.Request
	respond func(req compile.Request) (*compile.Result, error)
}

func (f *fakeService) Compile(ctx context.Context, req compile.Request) (*compile.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return &compile.Result{Asm: disasm.Placeholder(req.Source)}, nil
	}
	return respond(req)
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ---------------------------------------------------------------------------
// Session harness.
// ---------------------------------------------------------------------------

type harness struct {
	t        *testing.T
	session  *Session
	clock    *fakeClock
	service  *fakeService
	store    *storage.Memory
	source   *fakeSource
	assembly []*fakeEditor
	output   []*fakeOutput
}

type harnessOption func(h *harness, config *Config)

func withSetting(name, value string) harnessOption {
	return func(h *harness, config *Config) {
		_ = h.store.Save("test."+name, value)
	}
}

func withFilters(filters compile.Filters) harnessOption {
	return func(h *harness, config *Config) {
		config.Filters = filters
	}
}

func newHarness(t *testing.T, slots int, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		t:       t,
		clock:   newFakeClock(),
		service: &fakeService{},
		store:   storage.NewMemory(),
		source:  newFakeSource(),
	}
	ui := UI{Source: h.source}
	for i := 0; i < slots; i++ {
		asm, out := newFakeEditor(), &fakeOutput{}
		h.assembly = append(h.assembly, asm)
		h.output = append(h.output, out)
		ui.Assembly = append(ui.Assembly, asm)
		ui.Output = append(ui.Output, out)
	}

	config := Config{
		Template:       "int square(int x) {\n  return x * x;\n}",
		SupportsBinary: true,
		AfterFunc:      h.clock.AfterFunc,
		Now:            h.clock.Now,
	}
	for _, opt := range opts {
		opt(h, &config)
	}

	session, err := New(config, ui, h.service, storage.NewSettings(h.store, "test"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(session.Close)
	h.session = session
	return h
}

// next waits for the next queued event.
func (h *harness) next() Event {
	h.t.Helper()
	select {
	case ev := <-h.session.Events():
		return ev
	case <-time.After(5 * time.Second):
		h.t.Fatal("timed out waiting for an event")
		return nil
	}
}

// settle dispatches events until no slot is waiting for a result.
func (h *harness) settle() {
	h.t.Helper()
	for h.session.Outstanding() > 0 {
		h.session.Dispatch(h.next())
	}
}

// fire lets the debounce delay pass and applies the timer event.
func (h *harness) fire() {
	h.t.Helper()
	h.clock.Advance(DefaultDelay)
	h.session.Dispatch(h.next())
}

// noEvent checks that nothing has been queued.
func (h *harness) noEvent() {
	h.t.Helper()
	select {
	case ev := <-h.session.Events():
		h.t.Fatalf("unexpected event %#v", ev)
	default:
	}
}

func (h *harness) stored(name string) string {
	value, _ := h.store.Load("test." + name)
	return value
}

var testCompilers = []compile.Compiler{
	{ID: "g62", Name: "x86-64 gcc", Version: "6.2", Alias: "/usr/bin/g++-6", SupportsBinary: true, IntelAsm: true},
	{ID: "clang39", Name: "x86-64 clang", Version: "3.9", SupportsBinary: false, IntelAsm: true},
	{ID: "arm", Name: "ARM gcc", Version: "4.6"},
}

func intp(v int) *int       { return &v }
func u64p(v uint64) *uint64 { return &v }
