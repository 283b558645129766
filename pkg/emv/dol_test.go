package emv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tomkp/go-emv/pkg/tlv"
)

func TestParseDOL(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []DolEntry
		wantErr bool
	}{
		{
			name: "single byte tags",
			data: tlv.Hex("9A 03", "9C 01"),
			want: []DolEntry{
				{Tag: tlv.MustParseTagNumber("9A"), Length: 3},
				{Tag: tlv.MustParseTagNumber("9C"), Length: 1},
			},
		},
		{
			name: "two byte tag",
			data: tlv.Hex("9F02 06"),
			want: []DolEntry{
				{Tag: tlv.MustParseTagNumber("9F02"), Length: 6},
			},
		},
		{
			name: "mixed widths, PDOL-like",
			data: tlv.Hex("9F1A 02", "9F37 04", "5F2A 02"),
			want: []DolEntry{
				{Tag: tlv.MustParseTagNumber("9F1A"), Length: 2},
				{Tag: tlv.MustParseTagNumber("9F37"), Length: 4},
				{Tag: tlv.MustParseTagNumber("5F2A"), Length: 2},
			},
		},
		{
			name:    "empty",
			data:    nil,
			want:    nil,
		},
		{
			name:    "truncated multi-byte tag",
			data:    []byte{0x9F},
			wantErr: true,
		},
		{
			name:    "missing length byte",
			data:    []byte{0x9A},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDOL(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDOL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDOL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildDOL(t *testing.T) {
	entries := []DolEntry{
		{Tag: tlv.MustParseTagNumber("9F02"), Length: 6},
		{Tag: tlv.MustParseTagNumber("9A"), Length: 3},
		{Tag: tlv.MustParseTagNumber("9C"), Length: 1},
	}

	tests := []struct {
		name   string
		values map[tlv.TagNumber][]byte
		want   []byte
	}{
		{
			name:   "all absent emits zeros",
			values: nil,
			want:   make([]byte, 10),
		},
		{
			name: "exact length kept as-is",
			values: map[tlv.TagNumber][]byte{
				tlv.MustParseTagNumber("9F02"): tlv.Hex("000000000100"),
				tlv.MustParseTagNumber("9A"):   tlv.Hex("250101"),
				tlv.MustParseTagNumber("9C"):   tlv.Hex("00"),
			},
			want: tlv.Hex("000000000100", "250101", "00"),
		},
		{
			name: "too long truncates from the right",
			values: map[tlv.TagNumber][]byte{
				tlv.MustParseTagNumber("9C"): tlv.Hex("AABBCC"),
			},
			want: append(append(make([]byte, 6), make([]byte, 3)...), 0xAA),
		},
		{
			name: "too short left-pads with zero",
			values: map[tlv.TagNumber][]byte{
				tlv.MustParseTagNumber("9C"): tlv.Hex(""),
			},
			want: make([]byte, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDOL(entries, tt.values)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildDOL() mismatch (-want +got):\n%s", diff)
			}
			total := 0
			for _, e := range entries {
				total += e.Length
			}
			if len(got) != total {
				t.Errorf("BuildDOL() length = %d, want %d", len(got), total)
			}
		})
	}
}

func TestBuildDOL_LeftPadsShortValue(t *testing.T) {
	entries := []DolEntry{{Tag: tlv.MustParseTagNumber("9F37"), Length: 4}}
	values := map[tlv.TagNumber][]byte{
		tlv.MustParseTagNumber("9F37"): {0xAA},
	}
	got := BuildDOL(entries, values)
	want := []byte{0x00, 0x00, 0x00, 0xAA}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildDOL() mismatch (-want +got):\n%s", diff)
	}
}
