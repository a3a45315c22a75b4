package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/explorer"
)

type staticService struct{ result compile.Result }

func (s staticService) Compile(ctx context.Context, req compile.Request) (*compile.Result, error) {
	result := s.result
	return &result, nil
}

func TestPrintSession(t *testing.T) {
	line := func(v int) *int { return &v }
	addr := func(v uint64) *uint64 { return &v }

	service := staticService{result: compile.Result{
		Code:   0,
		Stderr: "/tmp/x.cpp:2:3: warning: unused variable 'y'\n",
		Asm: []disasm.Row{
			{Text: "square(int):"},
			{Text: "  imul edi, edi", Source: line(2), Address: addr(0x10), Opcodes: disasm.Opcodes{0x0f, 0xaf, 0xff}},
			{Text: "  ret", Source: line(3), Address: addr(0x13), Opcodes: disasm.Opcodes{0xc3}},
		},
	}}

	p := New(1)
	session, err := explorer.New(explorer.Config{
		Template:       "int square(int x) {\n  int y;\n  return x * x;\n}",
		SupportsBinary: true,
		Filters:        compile.Filters{Binary: true, ColouriseAsm: true},
	}, p.UI(), service, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	session.SetCompilers([]compile.Compiler{{ID: "g62", Name: "gcc", SupportsBinary: true}}, "g62")
	if !session.Flush() {
		t.Fatal("nothing scheduled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Wait(ctx, session); err != nil {
		t.Fatal(err)
	}

	if got := p.Assembly[0].Text(); !strings.Contains(got, "imul edi, edi") {
		t.Fatalf("assembly = %q", got)
	}
	if len(p.Source.widgets) != 1 || p.Source.widgets[0].line != 1 {
		t.Fatalf("widgets = %+v", p.Source.widgets)
	}

	var buf bytes.Buffer
	p.Print(&buf, termenv.WithProfile(termenv.Ascii))
	out := buf.String()

	for _, want := range []string{
		"── source ──",
		"── slot 0 ──",
		"10 0f af ff   imul edi, edi",
		"13 c3         ret",
		"2: warning: unused variable 'y'",
		"Compiled ok in slot 0",
		"int y;  ← warning: unused variable 'y'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}

	if err := session.DeserializeState(explorer.State{Compiler: "g62", Source: "int cube(int x);"}); err != nil {
		t.Fatal(err)
	}
	if len(p.Source.widgets) != 0 {
		t.Fatalf("widgets kept after replacing the source: %+v", p.Source.widgets)
	}
	buf.Reset()
	p.Print(&buf, termenv.WithProfile(termenv.Ascii))
	if strings.Contains(buf.String(), "←") {
		t.Errorf("stale diagnostic printed:\n%s", buf.String())
	}
}

func TestWaitCanceled(t *testing.T) {
	p := New(1)
	session, err := explorer.New(explorer.Config{Template: "x"}, p.UI(), blockingService{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()
	session.Compile()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, session); err == nil {
		t.Fatal("expected cancellation")
	}
}

type blockingService struct{}

func (blockingService) Compile(ctx context.Context, req compile.Request) (*compile.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
