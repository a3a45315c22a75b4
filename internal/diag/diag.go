// Package diag parses compiler diagnostics into line-addressed messages.
package diag

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "error"
	}
}

// Diagnostic is a single line of compiler output.
type Diagnostic struct {
	// Line is the 1-based source line, 0 when the output did not name one.
	Line     int
	Message  string
	Severity Severity
}

// HasLine reports whether the diagnostic refers to a source line.
func (d Diagnostic) HasLine() bool { return d.Line > 0 }

// rxLocation matches "<tmpdir path>:<line>[:<column>]: <message>".
var rxLocation = regexp.MustCompile(`^/tmp/[^:]+:([0-9]+)(:([0-9]+))?:\s+(.*)`)

// Parse yields a Diagnostic for every non-blank line of output.
// Lines that don't look like compiler locations are kept as plain messages.
func Parse(output string) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, line := range strings.Split(output, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(parseLine(line)) {
				return
			}
		}
	}
}

func parseLine(line string) Diagnostic {
	d := Diagnostic{Message: line}
	if match := rxLocation.FindStringSubmatch(line); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			if msg := strings.TrimSpace(match[4]); msg != "" {
				d.Line = n
				d.Message = msg
			}
		}
	}
	d.Severity = Classify(d.Message)
	return d
}

// Classify derives the severity from the message prefix.
func Classify(message string) Severity {
	switch {
	case strings.HasPrefix(message, "warning"):
		return Warning
	case strings.HasPrefix(message, "note"):
		return Note
	default:
		return Error
	}
}
