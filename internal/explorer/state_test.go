package explorer

import (
	"errors"
	"testing"
	"time"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/disasm"
)

func TestStateRoundTrip(t *testing.T) {
	const source = "// ünïcödé\nint main() {\n\treturn 0;\n}\n"
	for _, compress := range []bool{false, true} {
		h := newHarness(t, 1)
		h.session.SetCompilers(testCompilers, "clang39")
		h.session.SetOptions("-O2 -std=c++14")
		h.source.SetText(source)

		state, err := h.session.SerializeState(compress)
		if err != nil {
			t.Fatal(err)
		}
		if compress && (state.Source != "" || state.SourceZ == "") {
			t.Fatalf("compressed state = %+v", state)
		}
		if !compress && (state.Source != source || state.SourceZ != "") {
			t.Fatalf("plain state = %+v", state)
		}

		other := newHarness(t, 1)
		other.session.SetCompilers(testCompilers, "g62")
		if err := other.session.DeserializeState(state); err != nil {
			t.Fatal(err)
		}
		if got := other.source.Text(); got != source {
			t.Fatalf("compress=%v: source = %q", compress, got)
		}
		if got := other.session.Compiler().ID; got != "clang39" {
			t.Fatalf("compiler = %q", got)
		}
		if got := other.session.Options(); got != "-O2 -std=c++14" {
			t.Fatalf("options = %q", got)
		}
		if got := other.stored(SettingCompiler); got != "clang39" {
			t.Fatalf("persisted compiler = %q", got)
		}
	}
}

func TestDeserializeStateResolvesAlias(t *testing.T) {
	h := newHarness(t, 1)
	h.session.SetCompilers(testCompilers, "arm")
	if err := h.session.DeserializeState(State{Compiler: "/usr/bin/g++-6"}); err != nil {
		t.Fatal(err)
	}
	if got := h.session.Compiler().ID; got != "g62" {
		t.Fatalf("compiler = %q", got)
	}
}

func TestDeserializeStateUnknownCompiler(t *testing.T) {
	h := newHarness(t, 1)
	h.session.SetCompilers(testCompilers, "arm")
	if err := h.session.DeserializeState(State{Compiler: "icc17", Options: "-O1", Source: "x"}); err != nil {
		t.Fatal(err)
	}
	if got := h.session.Compiler().ID; got != "arm" {
		t.Fatalf("compiler = %q", got)
	}
	if h.session.Options() != "-O1" || h.source.Text() != "x" {
		t.Fatal("options or source not restored")
	}
}

func TestDeserializeStateRedrawsAndSchedules(t *testing.T) {
	h := newHarness(t, 2)
	h.service.respond = func(req compile.Request) (*compile.Result, error) {
		return &compile.Result{Asm: disasm.Placeholder("nop")}, nil
	}
	h.session.SetCompilers(testCompilers, "g62")
	h.fire()
	h.settle()

	before := []int{h.assembly[0].mutations, h.assembly[1].mutations}
	if err := h.session.DeserializeState(State{Compiler: "g62", Source: "void g() {}"}); err != nil {
		t.Fatal(err)
	}
	for i, asm := range h.assembly {
		if asm.mutations == before[i] {
			t.Errorf("slot %d not redrawn", i)
		}
	}

	h.fire()
	h.settle()
	if n := h.service.count(); n != 4 {
		t.Fatalf("got %d calls", n)
	}
}

func TestDeserializeStateWithoutAutocompile(t *testing.T) {
	h := newHarness(t, 1, withSetting(SettingAutocompile, "false"))
	h.session.SetCompilers(testCompilers, "g62")
	h.fire()
	h.settle()
	if n := h.service.count(); n != 1 {
		t.Fatalf("got %d calls", n)
	}

	if err := h.session.DeserializeState(State{Compiler: "clang", Options: "-O3", Source: "void g() {}"}); err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(time.Hour)
	h.noEvent()
	if n := h.service.count(); n != 1 {
		t.Fatalf("restore compiled with autocompile off: %d calls", n)
	}
	if h.source.Text() != "void g() {}" || h.session.Options() != "-O3" {
		t.Fatal("state not applied")
	}
}

func TestDeserializeStateInvalid(t *testing.T) {
	h := newHarness(t, 1)
	h.source.SetText("keep")
	err := h.session.DeserializeState(State{SourceZ: "not base64!"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
	if h.source.Text() != "keep" {
		t.Fatal("source replaced by invalid state")
	}

	z := "AAAA"
	if _, err := DecodeSource(z); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("truncated stream: err = %v", err)
	}
}

func TestSourceCodec(t *testing.T) {
	for _, source := range []string{"", "a", "int main() {}\n", "日本語\r\n\ttab"} {
		z, err := EncodeSource(source)
		if err != nil {
			t.Fatal(err)
		}
		got, err := DecodeSource(z)
		if err != nil {
			t.Fatal(err)
		}
		if got != source {
			t.Errorf("got %q, want %q", got, source)
		}
	}
}

func TestLink(t *testing.T) {
	state := State{Compiler: "g62", Options: "-O3", Source: "int x;"}
	link, err := state.Link()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseLink(link)
	if err != nil {
		t.Fatal(err)
	}
	if got != state {
		t.Fatalf("got %+v", got)
	}

	if _, err := ParseLink("%%%"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
}
