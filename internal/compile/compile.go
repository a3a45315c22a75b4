// Package compile describes requests to a remote compile service.
package compile

import (
	"time"

	"loov.dev/asmlens/internal/disasm"
)

// Filters are the user-toggleable compilation and rendering options.
type Filters struct {
	Binary       bool `json:"binary" toml:"binary"`
	Intel        bool `json:"intel" toml:"intel"`
	ColouriseAsm bool `json:"colouriseAsm" toml:"colourise-asm"`
	Labels       bool `json:"labels" toml:"labels"`
	Directives   bool `json:"directives" toml:"directives"`
	CommentOnly  bool `json:"commentOnly" toml:"comment-only"`
}

// Patch returns filters adjusted for what the deployment and the
// selected compiler support. A nil compiler is assumed to support everything.
func (f Filters) Patch(supportsBinary bool, compiler *Compiler) Filters {
	compilerBinary := compiler == nil || compiler.SupportsBinary
	if f.Binary && !(supportsBinary && compilerBinary) {
		f.Binary = false
	}
	return f
}

// Compiler describes a compiler offered by the service.
type Compiler struct {
	ID             string `json:"id" toml:"id"`
	Name           string `json:"name" toml:"name"`
	Version        string `json:"version" toml:"version"`
	Alias          string `json:"alias,omitempty" toml:"alias"`
	SupportsBinary bool   `json:"supportsBinary" toml:"supports-binary"`
	IntelAsm       bool   `json:"intelAsm" toml:"intel-asm"`
}

// Title is the compiler name with its version.
func (c *Compiler) Title() string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + " (" + c.Version + ")"
}

// Request is what gets sent for a single slot.
//
// Requests are compared with == to suppress resubmitting unchanged work.
type Request struct {
	Slot     int     `json:"slot"`
	Source   string  `json:"source"`
	Compiler string  `json:"compiler"`
	Options  string  `json:"options"`
	Filters  Filters `json:"filters"`
}

// Result is the response of the compile service.
type Result struct {
	Code   int          `json:"code"`
	Stdout string       `json:"stdout"`
	Stderr string       `json:"stderr"`
	Asm    []disasm.Row `json:"asm"`
}

// Dispatch is a request that has been handed to the service.
type Dispatch struct {
	Request
	// Seq increases for every request issued on the same slot.
	Seq  uint64
	Sent time.Time
}

// Outcome summarizes a finished compilation for analytics.
type Outcome struct {
	Slot     int
	Compiler string
	Options  string
	Code     int
	Duration time.Duration
}

// Catalog is the list of compilers offered by a deployment.
type Catalog struct {
	Compilers []Compiler `json:"compilers" toml:"compilers"`
	Default   string     `json:"defaultCompiler" toml:"default-compiler"`
}
