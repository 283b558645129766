package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// TagNumber is the integer identity of a BER-TLV tag: its encoded bytes
// (1 to 3 of them, per EMV's usage) read as one big-endian value. Two tags
// that encode to the same bytes compare equal as TagNumber, regardless of
// how many hex characters were used to spell them.
type TagNumber uint32

// ParseTagNumber converts the hex tag string moov-io/bertlv attaches to each
// decoded node (e.g. "9F02", "4F") into its TagNumber.
func ParseTagNumber(hexTag string) (TagNumber, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexTag))
	if err != nil {
		return 0, fmt.Errorf("tag %q is not valid hex: %w", hexTag, err)
	}
	if len(raw) == 0 || len(raw) > 3 {
		return 0, fmt.Errorf("tag %q has unsupported width %d bytes", hexTag, len(raw))
	}

	var n uint32
	for _, b := range raw {
		n = n<<8 | uint32(b)
	}
	return TagNumber(n), nil
}

// MustParseTagNumber is ParseTagNumber for tag literals known at compile time.
func MustParseTagNumber(hexTag string) TagNumber {
	n, err := ParseTagNumber(hexTag)
	if err != nil {
		panic(err)
	}
	return n
}

// Width reports how many bytes this tag number encodes to (1, 2, or 3).
func (t TagNumber) Width() int {
	switch {
	case t <= 0xFF:
		return 1
	case t <= 0xFFFF:
		return 2
	default:
		return 3
	}
}

// Bytes returns the tag's big-endian byte encoding at its natural width.
func (t TagNumber) Bytes() []byte {
	w := t.Width()
	out := make([]byte, w)
	for i := w - 1; i >= 0; i-- {
		out[i] = byte(t)
		t >>= 8
	}
	return out
}

// String renders the tag as uppercase hex, matching bertlv.TLV.Tag's format.
func (t TagNumber) String() string {
	return strings.ToUpper(hex.EncodeToString(t.Bytes()))
}
