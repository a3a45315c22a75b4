// Package explorer binds a source editor to assembly views of a remote
// compile service.
package explorer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/slices"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/storage"
)

var log = commonlog.GetLogger("asmlens.explorer")

// Persisted setting names.
const (
	SettingCode        = "code"
	SettingCompiler    = "compiler"
	SettingOptions     = "compilerOptions"
	SettingAutocompile = "autocompile"
)

const (
	processingText = "[Processing...]"
	noOutputText   = "[no output]"
)

// Config contains the static configuration of a session.
type Config struct {
	// Template is the source used when nothing has been persisted.
	Template string
	// SupportsBinary is whether the deployment can produce binary output.
	SupportsBinary bool
	Filters        compile.Filters
	Delay          time.Duration

	// AfterFunc overrides timer scheduling, mainly for tests.
	AfterFunc AfterFunc
	// Now overrides the clock used for timing analytics.
	Now func() time.Time
}

// Session owns the state of one editor window.
//
// A Session must only be used from a single goroutine. Timer firings and
// compile results are queued on Events; the owner applies them with Dispatch.
type Session struct {
	config   Config
	ui       UI
	service  compile.Service
	settings *storage.Settings

	// Analytics receives compile outcomes, may be nil.
	Analytics Analytics
	// OnChange is called after every edit or parameter change.
	OnChange func()
	// Wake is called from any goroutine after an event has been queued.
	Wake func()

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event

	debounce *Debouncer

	compilers []compile.Compiler
	byID      map[string]int
	byAlias   map[string]int

	compiler    string
	options     string
	filters     compile.Filters
	autocompile bool

	slots []slotState
}

type slotState struct {
	last     compile.Request
	sent     bool
	seq      uint64
	inflight bool

	assembly []disasm.Row
	hash     uint64
	rendered bool

	widgets []LineWidget
}

// New creates a session and restores persisted settings into the views.
// It does not trigger a compilation.
func New(config Config, ui UI, service compile.Service, settings *storage.Settings) (*Session, error) {
	if ui.Source == nil {
		return nil, fmt.Errorf("missing source editor")
	}
	if len(ui.Assembly) == 0 {
		return nil, fmt.Errorf("need at least one assembly view")
	}
	if len(ui.Output) != len(ui.Assembly) {
		return nil, fmt.Errorf("got %d outputs for %d assembly views", len(ui.Output), len(ui.Assembly))
	}
	if settings == nil {
		settings = storage.NewSettings(storage.NewMemory(), "")
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		config:   config,
		ui:       ui,
		service:  service,
		settings: settings,

		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),

		filters: config.Filters,
		slots:   make([]slotState, len(ui.Assembly)),
	}
	s.debounce = NewDebouncer(config.Delay, config.AfterFunc, func(gen uint64) {
		s.post(timerFired{gen: gen})
	})

	autocompile, _ := settings.Get(SettingAutocompile)
	s.autocompile = autocompile != "false"

	code, ok := settings.Get(SettingCode)
	if !ok || code == "" {
		code = config.Template
	}
	if code != "" {
		ui.Source.SetText(code)
	}

	if options, ok := settings.Get(SettingOptions); ok {
		s.options = options
	}

	return s, nil
}

// Close cancels pending work. In-flight results are dropped.
func (s *Session) Close() {
	s.debounce.Cancel()
	s.cancel()
}

// Slots returns the number of independent compilation slots.
func (s *Session) Slots() int { return len(s.slots) }

// Events delivers work that must be applied with Dispatch.
func (s *Session) Events() <-chan Event { return s.events }

// Dispatch applies an event received from Events.
func (s *Session) Dispatch(ev Event) { ev.apply(s) }

// Outstanding returns the number of slots waiting for a compile result.
func (s *Session) Outstanding() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].inflight {
			n++
		}
	}
	return n
}

func (s *Session) post(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
		return
	}
	if s.Wake != nil {
		s.Wake()
	}
}

// SetCompilers replaces the compiler table and restores the selection
// from settings, falling back to defaultID.
func (s *Session) SetCompilers(compilers []compile.Compiler, defaultID string) {
	s.compilers = slices.Clone(compilers)
	s.byID = make(map[string]int, len(compilers))
	s.byAlias = make(map[string]int, len(compilers))
	for i, c := range s.compilers {
		s.byID[c.ID] = i
		if c.Alias != "" {
			s.byAlias[c.Alias] = i
		}
	}

	id, ok := s.settings.Get(SettingCompiler)
	if !ok || id == "" {
		id = defaultID
	}
	if c := s.resolve(id); c != nil {
		s.compiler = c.ID
	}
	s.changed()
}

// Compilers returns the known compilers.
func (s *Session) Compilers() []compile.Compiler { return slices.Clone(s.compilers) }

// resolve finds a compiler by id, then by alias for renamed compilers.
func (s *Session) resolve(id string) *compile.Compiler {
	if i, ok := s.byID[id]; ok {
		return &s.compilers[i]
	}
	if i, ok := s.byAlias[id]; ok {
		return &s.compilers[i]
	}
	return nil
}

// Compiler returns the selected compiler, nil when none is selected.
func (s *Session) Compiler() *compile.Compiler {
	if i, ok := s.byID[s.compiler]; ok {
		return &s.compilers[i]
	}
	return nil
}

// SelectCompiler selects a compiler by id or alias.
// Unknown ids leave the selection unchanged.
func (s *Session) SelectCompiler(id string) bool {
	c := s.resolve(id)
	if c == nil {
		log.Warningf("unknown compiler %q", id)
		return false
	}
	s.compiler = c.ID
	s.changed()
	return true
}

// Options returns the compiler options text.
func (s *Session) Options() string { return s.options }

// SetOptions updates the compiler options text.
func (s *Session) SetOptions(options string) {
	s.options = options
	s.changed()
}

// Filters returns the filters adjusted for the selected compiler.
func (s *Session) Filters() compile.Filters {
	return s.filters.Patch(s.config.SupportsBinary, s.Compiler())
}

// SetFilters replaces the requested filters.
func (s *Session) SetFilters(filters compile.Filters) {
	s.filters = filters
	s.changed()
}

// Autocompile reports whether source edits trigger compilation.
func (s *Session) Autocompile() bool { return s.autocompile }

// SetAutocompile toggles compiling on edit and schedules a compilation.
func (s *Session) SetAutocompile(on bool) {
	s.autocompile = on
	s.persist(SettingAutocompile, strconv.FormatBool(on))
	s.changed()
}

// SourceChanged must be called by the source editor after user edits.
func (s *Session) SourceChanged() {
	if !s.autocompile {
		return
	}
	s.changed()
}

// Compile sends requests for all slots immediately, including requests
// identical to the last ones sent.
func (s *Session) Compile() {
	s.debounce.Cancel()
	s.compileAll(true)
}

// Flush compiles now if a compilation is scheduled.
func (s *Session) Flush() bool {
	if !s.debounce.Flush() {
		return false
	}
	s.compileAll(false)
	return true
}

// SelectSourceLine selects the 1-based line in the source editor.
func (s *Session) SelectSourceLine(line int) {
	if line <= 0 {
		return
	}
	s.ui.Source.SetSelection(disasm.SingleLine(line - 1))
}

// Buttons describes the enabled state of the filter buttons.
type Buttons struct {
	// Compiler is the title of the selected compiler.
	Compiler      string
	Intel         bool
	Binary        bool
	BinaryVisible bool
	// NonBinary is whether filters that conflict with binary output are usable.
	NonBinary bool
}

// Buttons computes the filter buttons for the selected compiler.
func (s *Session) Buttons() Buttons {
	filters := s.Filters()
	buttons := Buttons{
		Intel:         filters.Binary,
		BinaryVisible: s.config.SupportsBinary,
		NonBinary:     !filters.Binary,
	}
	if c := s.Compiler(); c != nil {
		buttons.Compiler = c.Title()
		buttons.Intel = c.IntelAsm || filters.Binary
		buttons.Binary = c.SupportsBinary
	}
	return buttons
}

func (s *Session) changed() {
	s.debounce.Trigger()
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) persist(name, value string) {
	if err := s.settings.Set(name, value); err != nil {
		log.Errorf("persisting %s: %v", name, err)
	}
}

// request snapshots the current state for slot.
func (s *Session) request(slot int) compile.Request {
	return compile.Request{
		Slot:     slot,
		Source:   s.ui.Source.Text(),
		Compiler: s.compiler,
		Options:  s.options,
		Filters:  s.Filters(),
	}
}

// compileAll sends the current request of every slot. Unless force is set,
// slots whose request has not changed are skipped.
func (s *Session) compileAll(force bool) {
	for slot := range s.slots {
		s.compileSlot(slot, force)
	}
}

func (s *Session) compileSlot(slot int, force bool) {
	st := &s.slots[slot]
	req := s.request(slot)
	if !force && st.sent && st.last == req {
		log.Debugf("slot %d unchanged, not compiling", slot)
		return
	}
	st.last, st.sent = req, true

	s.persist(SettingCompiler, req.Compiler)
	s.persist(SettingOptions, req.Options)
	s.persist(SettingCode, req.Source)

	st.seq++
	dispatch := compile.Dispatch{Request: req, Seq: st.seq, Sent: s.config.Now()}
	if s.service != nil {
		st.inflight = true
		go func() {
			result, err := s.service.Compile(s.ctx, dispatch.Request)
			s.post(compiled{dispatch: dispatch, result: result, err: err})
		}()
	}

	st.assembly = disasm.Placeholder(processingText)
	s.updateAsm(slot, false)
}

// Event is queued work for the session goroutine.
type Event interface {
	apply(s *Session)
}

type timerFired struct{ gen uint64 }

func (ev timerFired) apply(s *Session) {
	if !s.debounce.Fired(ev.gen) {
		return
	}
	s.compileAll(false)
}

type compiled struct {
	dispatch compile.Dispatch
	result   *compile.Result
	err      error
}

func (ev compiled) apply(s *Session) {
	slot := ev.dispatch.Slot
	if slot < 0 || slot >= len(s.slots) {
		return
	}
	st := &s.slots[slot]
	if ev.dispatch.Seq != st.seq {
		log.Debugf("slot %d: dropping stale result %d, latest is %d", slot, ev.dispatch.Seq, st.seq)
		return
	}
	st.inflight = false
	if ev.err != nil {
		log.Errorf("compile request for slot %d failed: %v", slot, ev.err)
		return
	}
	s.onCompileResponse(ev.dispatch, ev.result)
}
