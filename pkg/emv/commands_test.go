package emv

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tomkp/go-emv/pkg/tlv"
)

func TestSelectApplication_ValidatesAIDLength(t *testing.T) {
	session, _ := newSession()
	_, err := session.SelectApplication([]byte{0x01, 0x02, 0x03, 0x04})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("SelectApplication() error = %v, want *ValidationError", err)
	}
}

func TestReadRecord_ValidatesSFIRange(t *testing.T) {
	session, _ := newSession()
	if _, err := session.ReadRecord(0, 1); err == nil {
		t.Fatal("ReadRecord(sfi=0) expected validation error, got nil")
	}
	if _, err := session.ReadRecord(31, 1); err == nil {
		t.Fatal("ReadRecord(sfi=31) expected validation error, got nil")
	}
}

func TestReadRecord_Success(t *testing.T) {
	session, transport := newSession(tlv.Hex("01 02 03 90 00"))
	got, err := session.ReadRecord(1, 1)
	if err != nil {
		t.Fatalf("ReadRecord() unexpected error: %v", err)
	}
	want := tlv.Hex("01 02 03")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRecord() mismatch (-want +got):\n%s", diff)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(transport.calls))
	}
}

func TestReadRecord_CardStatusError(t *testing.T) {
	session, _ := newSession(tlv.Hex("6A 83"))
	_, err := session.ReadRecord(1, 1)
	var status *CardStatus
	if !errors.As(err, &status) {
		t.Fatalf("ReadRecord() error = %v, want *CardStatus", err)
	}
	if status.SW1 != 0x6A || status.SW2 != 0x83 {
		t.Errorf("CardStatus = %02X%02X, want 6A83", status.SW1, status.SW2)
	}
}

func TestGetData_ValidatesTagWidth(t *testing.T) {
	session, _ := newSession()
	_, err := session.GetData(0x10000)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("GetData() error = %v, want *ValidationError", err)
	}
}

func TestGetData_UsesProprietaryClass(t *testing.T) {
	session, transport := newSession(tlv.Hex("00 90 00"))
	if _, err := session.GetData(tlv.MustParseTagNumber("9F36")); err != nil {
		t.Fatalf("GetData() unexpected error: %v", err)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(transport.calls))
	}
	cmd := transport.calls[0]
	if cmd[0] != 0x80 {
		t.Errorf("CLA = %02X, want 80", cmd[0])
	}
	if cmd[1] != 0xCA {
		t.Errorf("INS = %02X, want CA", cmd[1])
	}
	if cmd[2] != 0x9F || cmd[3] != 0x36 {
		t.Errorf("P1/P2 = %02X%02X, want 9F36", cmd[2], cmd[3])
	}
}

func TestGetProcessingOptions_Format1(t *testing.T) {
	session, _ := newSession(tlv.Hex("80 06 1C 00 08 01 01 00 90 00"))
	got, err := session.GetProcessingOptions(nil)
	if err != nil {
		t.Fatalf("GetProcessingOptions() unexpected error: %v", err)
	}
	want := &GpoResult{AIP: tlv.Hex("1C 00"), AFL: tlv.Hex("08 01 01 00")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetProcessingOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetProcessingOptions_Format2(t *testing.T) {
	// 77 0A 82 02 1C 00 94 04 08 01 01 00
	session, _ := newSession(tlv.Hex("77 0A 82 02 1C 00 94 04 08 01 01 00", "90 00"))
	got, err := session.GetProcessingOptions(nil)
	if err != nil {
		t.Fatalf("GetProcessingOptions() unexpected error: %v", err)
	}
	want := &GpoResult{AIP: tlv.Hex("1C 00"), AFL: tlv.Hex("08 01 01 00")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetProcessingOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetProcessingOptions_MalformedLeadingByte(t *testing.T) {
	session, _ := newSession(tlv.Hex("6F 02 00 00 90 00"))
	_, err := session.GetProcessingOptions(nil)
	if !errors.Is(err, ErrMalformedGPOResponse) {
		t.Fatalf("GetProcessingOptions() error = %v, want ErrMalformedGPOResponse", err)
	}
}

func TestGenerateAC_ValidatesAcType(t *testing.T) {
	session, _ := newSession()
	_, err := session.GenerateAC(AcType(0x20), []byte{0x01})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("GenerateAC() error = %v, want *ValidationError", err)
	}
}

func TestGenerateAC_ValidatesNonEmptyCommandData(t *testing.T) {
	session, _ := newSession()
	_, err := session.GenerateAC(AcTypeARQC, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("GenerateAC() error = %v, want *ValidationError", err)
	}
}

func TestGenerateAC_Format2(t *testing.T) {
	data := tlv.Hex(
		"77 1E",
		"9F27 01 40",
		"9F36 02 00 05",
		"9F26 08 0102030405060708",
		"9F10 07 06010A03A0A800",
		"90 00",
	)
	session, _ := newSession(data)
	got, err := session.GenerateAC(AcTypeTC, []byte{0x01})
	if err != nil {
		t.Fatalf("GenerateAC() unexpected error: %v", err)
	}
	want := &GenerateAcResult{
		CID:           0x40,
		ATC:           tlv.Hex("00 05"),
		Cryptogram:    tlv.Hex("0102030405060708"),
		IssuerAppData: tlv.Hex("06010A03A0A800"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GenerateAC() mismatch (-want +got):\n%s", diff)
	}
	if got.GrantedCryptogramType() != AcTypeTC {
		t.Errorf("GrantedCryptogramType() = %02X, want TC", got.GrantedCryptogramType())
	}
}

func TestGenerateAC_Format2_MissingATCIsNotFatal(t *testing.T) {
	data := tlv.Hex(
		"77 19",
		"9F27 01 40",
		"9F26 08 0102030405060708",
		"9F10 07 06010A03A0A800",
		"90 00",
	)
	session, _ := newSession(data)
	got, err := session.GenerateAC(AcTypeTC, []byte{0x01})
	if err != nil {
		t.Fatalf("GenerateAC() unexpected error: %v", err)
	}
	want := &GenerateAcResult{
		CID:           0x40,
		Cryptogram:    tlv.Hex("0102030405060708"),
		IssuerAppData: tlv.Hex("06010A03A0A800"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GenerateAC() mismatch (-want +got):\n%s", diff)
	}
	if got.ATC != nil {
		t.Errorf("ATC = % X, want nil when 9F36 is absent", got.ATC)
	}
}

func TestGenerateAC_Format1(t *testing.T) {
	// 80 LL CID(1) ATC(2) AC(rest)
	session, _ := newSession(tlv.Hex("80 0B 40 00 05 0102030405060708", "90 00"))
	got, err := session.GenerateAC(AcTypeTC, []byte{0x01})
	if err != nil {
		t.Fatalf("GenerateAC() unexpected error: %v", err)
	}
	want := &GenerateAcResult{
		CID:        0x40,
		ATC:        tlv.Hex("00 05"),
		Cryptogram: tlv.Hex("0102030405060708"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GenerateAC() mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyPIN_WrongPIN(t *testing.T) {
	session, _ := newSession(tlv.Hex("63 C2"))
	err := session.VerifyPIN("1234")
	var pinErr *PinError
	if !errors.As(err, &pinErr) {
		t.Fatalf("VerifyPIN() error = %v, want *PinError", err)
	}
	if pinErr.Kind != PinWrongPin || pinErr.AttemptsLeft != 2 {
		t.Errorf("PinError = %+v, want Kind=PinWrongPin AttemptsLeft=2", pinErr)
	}
}

func TestVerifyPIN_Success(t *testing.T) {
	session, _ := newSession(tlv.Hex("90 00"))
	if err := session.VerifyPIN("1234"); err != nil {
		t.Fatalf("VerifyPIN() unexpected error: %v", err)
	}
}

func TestVerifyPIN_RejectsInvalidPIN(t *testing.T) {
	session, _ := newSession()
	var verr *ValidationError
	if err := session.VerifyPIN("12"); !errors.As(err, &verr) {
		t.Fatalf("VerifyPIN() error = %v, want *ValidationError", err)
	}
}

func TestChangePIN_Success(t *testing.T) {
	session, transport := newSession(tlv.Hex("90 00"))
	if err := session.ChangePIN("1234", "5678"); err != nil {
		t.Fatalf("ChangePIN() unexpected error: %v", err)
	}
	cmd := transport.calls[0]
	if len(cmd) != 4+1+16 { // header + Lc + two 8-byte PIN blocks
		t.Fatalf("ChangePIN() command length = %d, want %d", len(cmd), 4+1+16)
	}
}

func TestInternalAuthenticate_ValidatesNonEmptyData(t *testing.T) {
	session, _ := newSession()
	_, err := session.InternalAuthenticate(nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("InternalAuthenticate() error = %v, want *ValidationError", err)
	}
}
