package tlv

import (
	"bytes"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	data := Hex(
		"6F 1A",
		"84 07 A0000000031010",
		"A5 0F",
		"50 04 56495341",
		"87 01 01",
	)

	nodes, err := Parse(data, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, err := Emit(nodes)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch:\nwant %X\ngot  %X", data, got)
	}
}

func TestParse_VisaApplicationTemplate(t *testing.T) {
	data := Hex(
		"6F 1A",
		"84 07 A0 00 00 00 03 10 10",
		"A5 0F",
		"50 04 56 49 53 41",
		"87 01 01",
		"9F 38 03 9F 02 06",
	)

	nodes, err := Parse(data, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if v, ok := FindRecursive(nodes, MustParseTagNumber("84")); !ok || !bytes.Equal(v, Hex("A0 00 00 00 03 10 10")) {
		t.Errorf("find(0x84) = %X, ok=%v", v, ok)
	}
	if v, ok := FindRecursive(nodes, MustParseTagNumber("50")); !ok || !bytes.Equal(v, []byte("VISA")) {
		t.Errorf("find(0x50) = %q, ok=%v", v, ok)
	}
	if v, ok := FindRecursive(nodes, MustParseTagNumber("87")); !ok || !bytes.Equal(v, []byte{0x01}) {
		t.Errorf("find(0x87) = %X, ok=%v", v, ok)
	}
}

func TestFindShallow_DoesNotDescend(t *testing.T) {
	data := Hex("6F 05", "A5 03", "50 01 41")
	nodes, err := Parse(data, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, ok := FindShallow(nodes, MustParseTagNumber("50")); ok {
		t.Error("FindShallow should not see tag 50 nested inside A5")
	}
	if _, ok := FindShallow(nodes, MustParseTagNumber("6F")); !ok {
		t.Error("FindShallow should find the top-level tag 6F")
	}
}

func TestFindRecursive_InsidePrimitiveIsNoOp(t *testing.T) {
	data := Hex("84 03 50 01 41") // primitive tag 84 whose raw bytes happen to look like a nested 50
	nodes, err := Parse(data, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, ok := FindRecursive(nodes, MustParseTagNumber("50")); ok {
		t.Error("FindRecursive must not parse inside a primitive node's raw bytes")
	}
}

func TestParse_IndefiniteLengthRejected(t *testing.T) {
	_, err := Parse([]byte{0x84, 0x80}, false)
	if err == nil {
		t.Error("expected error for indefinite length form 0x80")
	}
}

func TestParse_LenientModeDropsTrailingPadding(t *testing.T) {
	good := Hex("70 05", "4F 03 010203")
	padded := append(append([]byte{}, good...), 0xFF, 0xFF, 0xFF)

	if _, err := Parse(padded, false); err == nil {
		t.Fatal("expected strict parse of padded record to fail")
	}

	nodes, err := Parse(padded, true)
	if err != nil {
		t.Fatalf("lenient Parse failed: %v", err)
	}

	v, ok := FindRecursive(nodes, MustParseTagNumber("4F"))
	if !ok || !bytes.Equal(v, Hex("010203")) {
		t.Errorf("find(0x4F) after lenient trim = %X, ok=%v", v, ok)
	}
}

func TestParse_LongLengthForms(t *testing.T) {
	// 82 00 05: length encoded on 2 bytes as 0x0005, constructed... use a primitive tag instead.
	value := bytes.Repeat([]byte{0xAB}, 5)
	data := append([]byte{0x9F, 0x20, 0x82, 0x00, 0x05}, value...)

	nodes, err := Parse(data, false)
	if err != nil {
		t.Fatalf("expected long-form length 82 00 05 to be accepted: %v", err)
	}
	if len(nodes) != 1 || !bytes.Equal(nodes[0].Value, value) {
		t.Errorf("unexpected parse result: %+v", nodes)
	}
}
