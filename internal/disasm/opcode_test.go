package disasm

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestFormatAddress(t *testing.T) {
	addr := uint64(0x401a2f)
	zero := uint64(0)
	if got := FormatAddress(&addr); got != "401a2f" {
		t.Errorf("got %q", got)
	}
	if got := FormatAddress(&zero); got != "" {
		t.Errorf("zero address formatted as %q", got)
	}
	if got := FormatAddress(nil); got != "" {
		t.Errorf("nil address formatted as %q", got)
	}
}

func TestFormatOpcodes(t *testing.T) {
	got := FormatOpcodes([]uint8{0x55, 0x48, 0x89, 0xe5, 0x0})
	want := []string{"55", "48", "89", "e5", "00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRowJSON(t *testing.T) {
	const input = `[
		{"text": "main:", "source": null},
		{"text": "  push rbp", "source": 3, "address": 4198400, "opcodes": [85], "links": []},
		{"text": "  jmp 401000", "source": 4, "address": 4198401, "opcodes": [235, 253],
		 "links": [{"offset": 6, "length": 6, "to": 4198400}]}
	]`

	var rows []Row
	if err := json.Unmarshal([]byte(input), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].HasSource() {
		t.Error("label row should not have a source")
	}
	if !reflect.DeepEqual(rows[2].Opcodes, Opcodes{235, 253}) {
		t.Errorf("opcodes = %v", rows[2].Opcodes)
	}
	if rows[2].Links[0] != (Link{Offset: 6, Length: 6, To: 0x401000}) {
		t.Errorf("link = %+v", rows[2].Links[0])
	}

	out, err := json.Marshal(rows[1].Opcodes)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[85]" {
		t.Errorf("opcodes encoded as %s", out)
	}
}

func TestJoinTextAndAddressRows(t *testing.T) {
	a, b := uint64(0x10), uint64(0x20)
	rows := []Row{{Text: "f:"}, {Text: "ret", Address: &a}, {Text: "nop", Address: &b}}
	if got := JoinText(rows); got != "f:\nret\nnop" {
		t.Errorf("JoinText = %q", got)
	}
	index := AddressRows(rows)
	if index["10"] != 1 || index["20"] != 2 || len(index) != 2 {
		t.Errorf("AddressRows = %v", index)
	}
	if got := JoinText(Placeholder("[no output]")); got != "[no output]" {
		t.Errorf("placeholder = %q", got)
	}
}

func TestDecode(t *testing.T) {
	got := Decode([]uint8{0x55}, 0x1000, IntelSyntax)
	if !strings.Contains(got, "push") || !strings.Contains(got, "rbp") {
		t.Errorf("Decode(55) = %q", got)
	}
	if got := Decode(nil, 0, GNUSyntax); got != "" {
		t.Errorf("Decode(nil) = %q", got)
	}
}
