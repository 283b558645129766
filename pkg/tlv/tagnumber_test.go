package tlv

import "testing"

func TestParseTagNumber(t *testing.T) {
	tests := []struct {
		hexTag  string
		want    TagNumber
		wantErr bool
	}{
		{"4F", 0x4F, false},
		{"9F02", 0x9F02, false},
		{"9F02 ", 0x9F02, false},
		{"DF7F45", 0xDF7F45, false},
		{"", 0, true},
		{"ZZ", 0, true},
		{"01020304", 0, true}, // 4 bytes exceeds the 3-byte tag width
	}

	for _, tt := range tests {
		t.Run(tt.hexTag, func(t *testing.T) {
			got, err := ParseTagNumber(tt.hexTag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTagNumber(%q) error = %v, wantErr %v", tt.hexTag, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseTagNumber(%q) = %X, want %X", tt.hexTag, uint32(got), uint32(tt.want))
			}
		})
	}
}

func TestTagNumber_RoundTrip(t *testing.T) {
	for _, hexTag := range []string{"4F", "9F02", "DF7F45"} {
		tag := MustParseTagNumber(hexTag)
		if got := tag.String(); got != hexTag {
			t.Errorf("TagNumber(%s).String() = %s, want %s", hexTag, got, hexTag)
		}
	}
}

func TestTagNumber_Width(t *testing.T) {
	tests := []struct {
		tag  TagNumber
		want int
	}{
		{0x4F, 1},
		{0x9F, 1},
		{0x9F02, 2},
		{0xDF7F45, 3},
	}
	for _, tt := range tests {
		if got := tt.tag.Width(); got != tt.want {
			t.Errorf("TagNumber(%X).Width() = %d, want %d", uint32(tt.tag), got, tt.want)
		}
	}
}
