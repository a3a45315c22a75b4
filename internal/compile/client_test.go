package compile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientCompile(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 1,
			"stdout": "",
			"stderr": "/tmp/x.cpp:2: error: oops\n",
			"asm": [{"text": "square(int):", "source": null}, {"text": "  ret", "source": 2, "address": 16, "opcodes": [195]}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	req := Request{
		Slot:     1,
		Source:   "int square(int x) {\n  return x * x;\n}",
		Compiler: "g62",
		Options:  "-O2",
		Filters:  Filters{Intel: true, ColouriseAsm: true},
	}
	result, err := client.Compile(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got != req {
		t.Errorf("server saw %+v, want %+v", got, req)
	}
	if result.Code != 1 || !strings.Contains(result.Stderr, "oops") {
		t.Errorf("result = %+v", result)
	}
	if len(result.Asm) != 2 || *result.Asm[1].Source != 2 || *result.Asm[1].Address != 16 {
		t.Errorf("asm = %+v", result.Asm)
	}
	if len(result.Asm[1].Opcodes) != 1 || result.Asm[1].Opcodes[0] != 0xc3 {
		t.Errorf("opcodes = %v", result.Asm[1].Opcodes)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(test.handler)
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).Compile(context.Background(), Request{})
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	if _, err := NewClient(url, time.Second).Compile(context.Background(), Request{}); err == nil {
		t.Fatal("expected an error from a closed server")
	}
}

func TestFiltersPatch(t *testing.T) {
	binary := Filters{Binary: true, Intel: true}
	withBinary := &Compiler{ID: "g", SupportsBinary: true}
	withoutBinary := &Compiler{ID: "c"}

	tests := []struct {
		name     string
		global   bool
		compiler *Compiler
		want     bool
	}{
		{"supported", true, withBinary, true},
		{"deployment off", false, withBinary, false},
		{"compiler off", true, withoutBinary, false},
		{"no compiler", true, nil, true},
		{"no compiler, deployment off", false, nil, false},
	}
	for _, test := range tests {
		got := binary.Patch(test.global, test.compiler)
		if got.Binary != test.want {
			t.Errorf("%s: binary = %v, want %v", test.name, got.Binary, test.want)
		}
		if !got.Intel {
			t.Errorf("%s: unrelated filter changed", test.name)
		}
	}
	if !binary.Binary {
		t.Error("Patch modified the receiver")
	}
}

func TestRequestEquality(t *testing.T) {
	a := Request{Slot: 0, Source: "x", Compiler: "g", Options: "-O1", Filters: Filters{Labels: true}}
	b := a
	if a != b {
		t.Fatal("identical requests differ")
	}
	b.Filters.Labels = false
	if a == b {
		t.Fatal("filter change not detected")
	}
}

func TestCompilerTitle(t *testing.T) {
	c := Compiler{Name: "gcc", Version: "13.2"}
	if c.Title() != "gcc (13.2)" {
		t.Errorf("title = %q", c.Title())
	}
	c.Version = ""
	if c.Title() != "gcc" {
		t.Errorf("title = %q", c.Title())
	}
}

func TestClientCompilers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`{
			"compilers": [
				{"id": "g62", "name": "x86-64 gcc", "version": "6.2", "alias": "/usr/bin/g++-6", "supportsBinary": true, "intelAsm": true},
				{"id": "arm", "name": "ARM gcc", "version": "4.6"}
			],
			"defaultCompiler": "g62"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/compile", time.Second)
	catalog, err := client.Compilers(context.Background(), server.URL+"/api/compilers")
	if err != nil {
		t.Fatal(err)
	}
	if catalog.Default != "g62" || len(catalog.Compilers) != 2 {
		t.Fatalf("catalog = %+v", catalog)
	}
	if c := catalog.Compilers[0]; c.Alias != "/usr/bin/g++-6" || !c.SupportsBinary || !c.IntelAsm {
		t.Fatalf("compiler = %+v", c)
	}
}
