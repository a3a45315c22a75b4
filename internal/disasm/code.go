package disasm

import "strings"

// Row represents a single line of an assembly listing.
type Row struct {
	Text string `json:"text" cbor:"1,keyasint"`
	// Source is the 1-based line in the source editor that produced the row.
	Source  *int    `json:"source,omitempty" cbor:"2,keyasint,omitempty"`
	Address *uint64 `json:"address,omitempty" cbor:"3,keyasint,omitempty"`
	Opcodes Opcodes `json:"opcodes,omitempty" cbor:"4,keyasint,omitempty"`
	Links   []Link  `json:"links,omitempty" cbor:"5,keyasint,omitempty"`
}

// Link marks a span in Row.Text that refers to another address.
type Link struct {
	Offset int    `json:"offset" cbor:"1,keyasint"`
	Length int    `json:"length" cbor:"2,keyasint"`
	To     uint64 `json:"to" cbor:"3,keyasint"`
}

// HasSource reports whether the row references a source line.
func (row *Row) HasSource() bool { return row.Source != nil && *row.Source > 0 }

// Placeholder creates a listing with a single informational row.
func Placeholder(text string) []Row {
	return []Row{{Text: text}}
}

// JoinText joins the text of all rows with newlines.
func JoinText(rows []Row) string {
	var b strings.Builder
	for i := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(rows[i].Text)
	}
	return b.String()
}

// AddressRows maps formatted addresses to the row that declares them.
func AddressRows(rows []Row) map[string]int {
	index := make(map[string]int, len(rows))
	for i := range rows {
		addr := FormatAddress(rows[i].Address)
		if addr == "" {
			continue
		}
		index[addr] = i
	}
	return index
}
