package emv

import (
	"fmt"

	"github.com/tomkp/go-emv/pkg/tlv"
)

// DOL ENGINE (Component C): PDOL/CDOL are ordered schemas of (tag, length)
// entries that tell the terminal how to assemble a value buffer for GET
// PROCESSING OPTIONS / GENERATE AC. The entry order is authoritative and is
// never sorted by tag number.

// DolEntry is one (tag, length) pair from a parsed Data Object List.
type DolEntry struct {
	Tag    tlv.TagNumber
	Length int
}

// ParseDOL walks a DOL byte sequence tag-by-tag: each entry is the tag's
// encoded bytes (1-3, same continuation-byte rule as any BER-TLV tag)
// followed by a single length byte. Parsing stops at the end of input.
func ParseDOL(data []byte) ([]DolEntry, error) {
	var entries []DolEntry
	i := 0
	for i < len(data) {
		tagStart := i
		first := data[i]
		i++
		if first&0x1F == 0x1F {
			for i < len(data) && data[i]&0x80 != 0 {
				i++
			}
			if i >= len(data) {
				return nil, fmt.Errorf("%w: truncated DOL tag at offset %d", ErrMalformedTLV, tagStart)
			}
			i++ // consume the final continuation byte (high bit clear)
		}

		tagNum, err := parseTagNumberFromBytes(data[tagStart:i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTLV, err)
		}

		if i >= len(data) {
			return nil, fmt.Errorf("%w: DOL entry for tag %s missing length byte", ErrMalformedTLV, tagNum)
		}
		length := int(data[i])
		i++

		entries = append(entries, DolEntry{Tag: tagNum, Length: length})
	}
	return entries, nil
}

func parseTagNumberFromBytes(b []byte) (tlv.TagNumber, error) {
	if len(b) == 0 || len(b) > 3 {
		return 0, fmt.Errorf("tag width %d out of range", len(b))
	}
	var n uint32
	for _, x := range b {
		n = n<<8 | uint32(x)
	}
	return tlv.TagNumber(n), nil
}

// BuildDOL assembles the concatenated value buffer for a DOL, in list order.
// For each entry: if values has a byte slice for the tag, it is
// truncated-from-the-right when too long (leading Length bytes kept) or
// left-padded with 0x00 when too short; if absent, Length zero bytes are
// emitted.
func BuildDOL(entries []DolEntry, values map[tlv.TagNumber][]byte) []byte {
	out := make([]byte, 0, dolTotalLength(entries))
	for _, e := range entries {
		v, ok := values[e.Tag]
		switch {
		case !ok:
			out = append(out, make([]byte, e.Length)...)
		case len(v) == e.Length:
			out = append(out, v...)
		case len(v) > e.Length:
			out = append(out, v[:e.Length]...)
		default:
			pad := make([]byte, e.Length-len(v))
			out = append(out, pad...)
			out = append(out, v...)
		}
	}
	return out
}

func dolTotalLength(entries []DolEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Length
	}
	return total
}
