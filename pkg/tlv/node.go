package tlv

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/moov-io/bertlv"
)

// ErrMalformedTLV is returned when BER-TLV data cannot be decoded under the
// current parse mode (strict, or lenient after exhausting its trim budget).
var ErrMalformedTLV = errors.New("malformed BER-TLV data")

// Node is the sum-type representation of a parsed BER-TLV element: it is
// either Primitive (carries Value) or Constructed (carries Children), never
// both. Children preserve encounter order.
type Node struct {
	Tag      TagNumber
	Value    []byte // populated only when !Constructed
	Children []Node // populated only when Constructed
	raw      bertlv.TLV
}

// Constructed reports whether this node is an inner node (has children)
// rather than a leaf carrying raw bytes.
func (n Node) Constructed() bool {
	return n.raw.TLVs != nil || len(n.Children) > 0
}

// Parse decodes top-level BER-TLV data into a shallow sequence of Nodes.
//
// In strict mode (lenient=false), any malformed or overrunning length fails
// the whole parse. In lenient mode (lenient=true), a trailing truncated TLV
// element — the common case of a card padding a record with garbage bytes —
// is dropped rather than failing the parse, by trimming one trailing byte at
// a time and retrying until decode succeeds or no bytes remain.
func Parse(data []byte, lenient bool) ([]Node, error) {
	packets, err := bertlv.Decode(data)
	if err == nil {
		return fromPackets(packets), nil
	}
	if !lenient {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTLV, err)
	}

	trimmed := data
	for len(trimmed) > 0 {
		trimmed = trimmed[:len(trimmed)-1]
		packets, err := bertlv.Decode(trimmed)
		if err == nil {
			return fromPackets(packets), nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedTLV, err)
}

func fromPackets(packets []bertlv.TLV) []Node {
	nodes := make([]Node, 0, len(packets))
	for _, p := range packets {
		nodes = append(nodes, fromPacket(p))
	}
	return nodes
}

func fromPacket(p bertlv.TLV) Node {
	tag, err := ParseTagNumber(p.Tag)
	if err != nil {
		tag = 0
	}
	n := Node{Tag: tag, raw: p}
	if p.TLVs != nil {
		n.Children = fromPackets(p.TLVs)
	} else {
		n.Value = p.Value
	}
	return n
}

// FindShallow searches only the top level of nodes for the first node with
// the given tag.
func FindShallow(nodes []Node, tag TagNumber) (Node, bool) {
	for _, n := range nodes {
		if n.Tag == tag {
			return n, true
		}
	}
	return Node{}, false
}

// FindRecursive performs a depth-first, pre-order search for the first node
// whose tag matches, returning its value bytes (not the tag/length framing).
// If the matched node is constructed, its children are re-encoded to bytes.
// Searching inside a primitive node is a no-op by construction: primitives
// have no children to recurse into.
func FindRecursive(nodes []Node, tag TagNumber) ([]byte, bool) {
	for _, n := range nodes {
		if n.Tag == tag {
			if n.Constructed() {
				encoded, err := Emit(n.Children)
				if err != nil {
					return nil, false
				}
				return encoded, true
			}
			return n.Value, true
		}
		if n.Constructed() {
			if v, ok := FindRecursive(n.Children, tag); ok {
				return v, ok
			}
		}
	}
	return nil, false
}

// FindNodeRecursive is like FindRecursive but returns the matched Node
// itself rather than flattened value bytes, useful when the caller needs to
// keep walking the matched subtree (e.g. pulling sibling tags out of an
// application template).
func FindNodeRecursive(nodes []Node, tag TagNumber) (Node, bool) {
	for _, n := range nodes {
		if n.Tag == tag {
			return n, true
		}
		if n.Constructed() {
			if found, ok := FindNodeRecursive(n.Children, tag); ok {
				return found, ok
			}
		}
	}
	return Node{}, false
}

// Emit re-encodes a Node sequence to its canonical BER-TLV byte form,
// choosing minimal length encoding (delegated to moov-io/bertlv, which
// already does so).
func Emit(nodes []Node) ([]byte, error) {
	packets := toPackets(nodes)
	return bertlv.Encode(packets)
}

func toPackets(nodes []Node) []bertlv.TLV {
	packets := make([]bertlv.TLV, 0, len(nodes))
	for _, n := range nodes {
		p := bertlv.TLV{Tag: n.Tag.String()}
		if n.Constructed() {
			p.TLVs = toPackets(n.Children)
		} else {
			p.Value = n.Value
		}
		packets = append(packets, p)
	}
	return packets
}

// EmitOne wraps a single tag/value pair as a primitive TLV element, used by
// the DOL engine to frame command data (e.g. tag 0x83 around PDOL/CDOL
// response data for GET PROCESSING OPTIONS).
func EmitOne(tag TagNumber, value []byte) ([]byte, error) {
	return Emit([]Node{{Tag: tag, Value: value}})
}

// EqualBytes is a tiny helper kept local to avoid importing bytes package in
// every caller that just wants a value comparison.
func EqualBytes(a, b []byte) bool {
	return bytes.Equal(a, b)
}
