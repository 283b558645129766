package emv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tomkp/go-emv/pkg/tlv"
)

func TestParseAFL(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []AflEntry
	}{
		{
			name: "single entry",
			data: tlv.Hex("08 01 01 00"),
			want: []AflEntry{
				{SFI: 1, FirstRecord: 1, LastRecord: 1, SDARecordCount: 0},
			},
		},
		{
			name: "multiple entries, exact multiple of 4",
			data: tlv.Hex("08 01 03 02", "10 01 01 00"),
			want: []AflEntry{
				{SFI: 1, FirstRecord: 1, LastRecord: 3, SDARecordCount: 2},
				{SFI: 2, FirstRecord: 1, LastRecord: 1, SDARecordCount: 0},
			},
		},
		{
			name: "trailing partial stride dropped",
			data: tlv.Hex("08 01 01 00", "10 02"),
			want: []AflEntry{
				{SFI: 1, FirstRecord: 1, LastRecord: 1, SDARecordCount: 0},
			},
		},
		{
			name: "empty",
			data: nil,
			want: nil,
		},
		{
			name: "lower 3 bits of byte 0 ignored",
			data: []byte{0x0F, 0x01, 0x01, 0x00}, // SFI=1 (0x0F>>3=1), low bits set but irrelevant
			want: []AflEntry{
				{SFI: 1, FirstRecord: 1, LastRecord: 1, SDARecordCount: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAFL(tt.data)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAFL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAFL_StrideCount(t *testing.T) {
	for k := 0; k <= 3; k++ {
		data := make([]byte, 4*k)
		for i := 0; i < k; i++ {
			data[4*i] = byte(i+1) << 3
			data[4*i+1] = 1
			data[4*i+2] = 1
		}
		got := ParseAFL(data)
		if len(got) != k {
			t.Errorf("k=%d: ParseAFL() returned %d entries, want %d", k, len(got), k)
		}
	}

	for _, r := range []int{1, 2, 3} {
		data := make([]byte, 4+r)
		got := ParseAFL(data)
		if len(got) != 1 {
			t.Errorf("4+%d bytes: ParseAFL() returned %d entries, want 1", r, len(got))
		}
	}
}
