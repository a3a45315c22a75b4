package disasm

import (
	"strconv"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Opcodes is the machine code of a row.
//
// It is encoded as a list of numbers rather than base64, which is what
// compile services send.
type Opcodes []uint8

// MarshalJSON encodes opcodes as a numeric array.
func (ops Opcodes) MarshalJSON() ([]byte, error) {
	if ops == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, 2+4*len(ops))
	b = append(b, '[')
	for i, op := range ops {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendUint(b, uint64(op), 10)
	}
	return append(b, ']'), nil
}

// UnmarshalJSON decodes a numeric array.
func (ops *Opcodes) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*ops = nil
		return nil
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	*ops = (*ops)[:0]
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 8)
		if err != nil {
			return err
		}
		*ops = append(*ops, uint8(v))
	}
	return nil
}

// FormatAddress formats the address as lower-case hex without a prefix.
func FormatAddress(addr *uint64) string {
	if addr == nil || *addr == 0 {
		return ""
	}
	return strconv.FormatUint(*addr, 16)
}

// FormatOpcodes formats each byte as a two-digit hex group.
func FormatOpcodes(ops []uint8) []string {
	groups := make([]string, len(ops))
	for i, op := range ops {
		s := strconv.FormatUint(uint64(op), 16)
		if len(s) < 2 {
			s = "0" + s
		}
		groups[i] = s
	}
	return groups
}

// Syntax selects the assembly dialect used by Decode.
type Syntax int

const (
	GNUSyntax Syntax = iota
	IntelSyntax
)

// Decode decodes x86-64 machine code at pc for display alongside the
// compiler's own text. It returns "" when the bytes do not decode.
func Decode(ops []uint8, pc uint64, syntax Syntax) string {
	if len(ops) == 0 {
		return ""
	}
	inst, err := x86asm.Decode(ops, 64)
	if err != nil {
		return ""
	}
	switch syntax {
	case IntelSyntax:
		return x86asm.IntelSyntax(inst, pc, nil)
	default:
		return x86asm.GNUSyntax(inst, pc, nil)
	}
}
