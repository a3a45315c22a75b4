package explorer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/xxh3"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/disasm"
)

// MaxDiagnostics is the number of compiler messages shown per render.
const MaxDiagnostics = 50

// TruncatedMessage replaces messages beyond MaxDiagnostics.
const TruncatedMessage = "Too many output lines...truncated"

var hashEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("explorer: failed to create CBOR enc mode: %v", err))
	}
	hashEncMode = em
}

// hashRows returns a content hash of the listing.
func hashRows(rows []disasm.Row) (uint64, error) {
	data, err := hashEncMode.Marshal(rows)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(data), nil
}

func (s *Session) onCompileResponse(dispatch compile.Dispatch, result *compile.Result) {
	slot := dispatch.Slot
	st := &s.slots[slot]

	stdout, stderr := result.Stdout, result.Stderr
	if result.Code == 0 {
		stdout += "Compiled ok in slot " + strconv.Itoa(slot) + "\n"
	} else {
		stderr += "Compilation failed in slot " + strconv.Itoa(slot) + "\n"
	}

	if s.Analytics != nil {
		s.Analytics.Track(compile.Outcome{
			Slot:     slot,
			Compiler: dispatch.Compiler,
			Options:  dispatch.Options,
			Code:     result.Code,
			Duration: s.config.Now().Sub(dispatch.Sent),
		})
	}

	output := s.ui.Output[slot]
	output.Clear()
	for _, w := range st.widgets {
		w.Remove()
	}
	st.widgets = st.widgets[:0]

	count := 0
	for d := range diag.Parse(stderr + stdout) {
		if count == MaxDiagnostics {
			output.Append(diag.Diagnostic{Message: TruncatedMessage, Severity: diag.Classify(TruncatedMessage)})
			break
		}
		count++
		if d.HasLine() {
			st.widgets = append(st.widgets, s.ui.Source.AddLineWidget(d.Line-1, d))
		}
		output.Append(d)
	}

	st.assembly = result.Asm
	if st.assembly == nil {
		st.assembly = disasm.Placeholder(noOutputText)
	}
	s.updateAsm(slot, false)
}

// Refresh redraws the assembly of every slot, even if unchanged.
func (s *Session) Refresh() {
	for slot := range s.slots {
		s.updateAsm(slot, true)
	}
}

// linkTarget is a row that can be jumped to.
type linkTarget struct {
	row    int
	marker Highlighter
}

// updateAsm renders the current assembly of slot unless it has already
// been rendered and force is not set.
func (s *Session) updateAsm(slot int, force bool) {
	st := &s.slots[slot]
	rows := st.assembly
	if rows == nil {
		return
	}

	hash, err := hashRows(rows)
	if err != nil {
		log.Warningf("hashing assembly: %v", err)
		force = true
	}
	if !force && st.rendered && st.hash == hash {
		return
	}
	st.hash, st.rendered = hash, true

	source := s.ui.Source
	asm := s.ui.Assembly[slot]
	filters := s.Filters()
	nums := disasm.Number(rows)

	source.ClearLineClasses()

	asm.SetText(disasm.JoinText(rows))
	asm.ClearLineClasses()

	markers := make([]Highlighter, len(rows))
	for i := range rows {
		markers[i] = asm.SetGutterMarker(i, GutterAddress, Marker{Text: disasm.FormatAddress(rows[i].Address)})
	}
	targets := make(map[string]linkTarget, len(rows))
	for address, row := range disasm.AddressRows(rows) {
		targets[address] = linkTarget{row: row, marker: markers[row]}
	}

	for i := range rows {
		row := &rows[i]

		var opcodes Marker
		if len(row.Opcodes) > 0 {
			groups := strings.Join(disasm.FormatOpcodes(row.Opcodes), " ")
			opcodes = Marker{Text: groups, Title: groups}
		}
		asm.SetGutterMarker(i, GutterOpcodes, opcodes)

		for _, link := range row.Links {
			s.markLink(asm, i, link, targets)
		}
	}

	if filters.Binary {
		asm.SetGutters(false, GutterAddress, GutterOpcodes)
	} else {
		asm.SetGutters(true)
	}

	if filters.ColouriseAsm {
		for _, line := range nums.Lines {
			source.AddLineClass(line, disasm.RainbowClass(nums.Source[line]))
		}
		for i := range rows {
			if ordinal, ok := nums.Rows[i]; ok {
				asm.AddLineClass(i, disasm.RainbowClass(ordinal))
			}
		}
	}
}

func (s *Session) markLink(asm Editor, row int, link disasm.Link, targets map[string]linkTarget) {
	label := strconv.FormatUint(link.To, 16)
	span := Span{Line: row, From: link.Offset, To: link.Offset + link.Length, Label: label}

	dest, ok := targets[label]
	if !ok {
		asm.MarkSpan(span, SpanEvents{})
		return
	}

	var self Highlighter
	self = asm.MarkSpan(span, SpanEvents{
		Hover: func(entered bool) {
			dest.marker.SetHighlighted(entered)
			self.SetHighlighted(entered)
		},
		Click: func() {
			asm.ScrollToLine(dest.row)
			dest.marker.SetHighlighted(false)
			self.SetHighlighted(false)
		},
	})
}
