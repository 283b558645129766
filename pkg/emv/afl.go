package emv

// AFL PARSER (Component D): the Application File Locator (tag 0x94) tells
// the terminal which records to read during the READ RECORD phase. It is a
// sequence of 4-byte entries; a trailing partial entry is dropped silently
// (observed card behavior — padding, not data).

// AflEntry is one 4-byte AFL entry.
type AflEntry struct {
	SFI             byte // 1..30
	FirstRecord     byte
	LastRecord      byte
	SDARecordCount  byte // number of records from FirstRecord that participate in offline SDA
}

// ParseAFL decodes AFL bytes into entries, walking in 4-byte strides.
// Byte 0's upper 5 bits are the SFI; its lower 3 bits are defined to be
// zero and are ignored on parse. Any trailing bytes shorter than a full
// 4-byte stride are dropped.
func ParseAFL(data []byte) []AflEntry {
	n := len(data) / 4
	entries := make([]AflEntry, 0, n)
	for i := 0; i < n; i++ {
		b := data[i*4 : i*4+4]
		entries = append(entries, AflEntry{
			SFI:            b[0] >> 3,
			FirstRecord:    b[1],
			LastRecord:     b[2],
			SDARecordCount: b[3],
		})
	}
	return entries
}
