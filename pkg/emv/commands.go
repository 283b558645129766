package emv

import (
	"errors"
	"fmt"

	"github.com/tomkp/go-emv/pkg/iso7816"
	"github.com/tomkp/go-emv/pkg/tlv"
)

// EMV COMMAND LAYER (Component G): one builder per EMV-level operation,
// each validating its arguments before ever touching the Transport, then
// delegating transmit/retry to the underlying iso7816.Client (which already
// absorbs 61xx/6Cxx). Every command here uses short-form APDU encoding only
// (Le/Lc one byte) — EMV terminals never need extended length.

const pseName = "1PAY.SYS.DDF01"
const ppseName = "2PAY.SYS.DDF01"

// SelectPSE selects the contact Payment System Environment.
func (s *EmvSession) SelectPSE() (*FCI, error) {
	return s.selectDFName([]byte(pseName))
}

// SelectPPSE selects the contactless Proximity Payment System Environment.
func (s *EmvSession) SelectPPSE() (*FCI, error) {
	return s.selectDFName([]byte(ppseName))
}

// SelectApplication selects an application by its AID (5-16 bytes per EMV
// Book 1).
func (s *EmvSession) SelectApplication(aid []byte) (*FCI, error) {
	if len(aid) < 5 || len(aid) > 16 {
		return nil, validationErrorf("aid", "must be 5 to 16 bytes, got %d", len(aid))
	}
	return s.selectDFName(aid)
}

func (s *EmvSession) selectDFName(name []byte) (*FCI, error) {
	cmd := iso7816.SelectByAID(s.Class, name)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	data := trace.Last().Response.Data
	fci, err := ParseFCI(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTLV, err)
	}
	return fci, nil
}

// ReadRecord reads one record from sfi.
func (s *EmvSession) ReadRecord(sfi, recordNumber byte) ([]byte, error) {
	if sfi == 0 || sfi > 30 {
		return nil, validationErrorf("sfi", "must be 1 to 30, got %d", sfi)
	}
	cmd := iso7816.ReadRecord(s.Class, sfi, recordNumber)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	return trace.Last().Response.Data, nil
}

// proprietaryClass is the CLA byte EMV Book 3 reserves for its own
// proprietary commands (GET DATA, GET PROCESSING OPTIONS, GENERATE AC).
// Unlike SELECT/READ RECORD/VERIFY, which ride the session's interindustry
// CLA, these three are always sent as CLA=0x80 regardless of session
// options.
var proprietaryClass = mustInterindustryClass()

func mustInterindustryClass() iso7816.Class {
	c, err := iso7816.NewClass(0x80)
	if err != nil {
		panic(err)
	}
	return c
}

// GetData reads a single primitive data object by tag (INS CA), per EMV
// Book 3 section 6.5.7. Used for tags like the PIN Try Counter (9F17) and
// the Application Transaction Counter (9F36).
func (s *EmvSession) GetData(tag tlv.TagNumber) ([]byte, error) {
	if tag > 0xFFFF {
		return nil, validationErrorf("tag", "must fit in 16 bits, got %s", tag.String())
	}
	ins, err := iso7816.NewInstruction(iso7816.INS_GET_DATA)
	if err != nil {
		return nil, err
	}
	p1 := byte(tag >> 8)
	p2 := byte(tag)
	cmd := iso7816.NewCommandAPDU(proprietaryClass, ins, p1, p2, nil, iso7816.MaxShortLe)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	return trace.Last().Response.Data, nil
}

// GpoResult is the decoded response to GET PROCESSING OPTIONS, normalized
// across the two response formats EMV Book 3 defines.
type GpoResult struct {
	AIP []byte // Application Interchange Profile (2 bytes)
	AFL []byte // Application File Locator
}

// GetProcessingOptions sends the PDOL-derived command data (already built via
// BuildDOL against the card's PDOL and terminal values) and decodes the
// response. Format-1 responses (leading byte 0x80) carry AIP+AFL
// concatenated with no inner tags; format-2 responses (leading byte 0x77)
// are a constructed template with tags 0x82 and 0x94.
func (s *EmvSession) GetProcessingOptions(commandData []byte) (*GpoResult, error) {
	ins, err := iso7816.NewInstruction(0xA8)
	if err != nil {
		return nil, err
	}
	framed, err := tlv.EmitOne(tlv.MustParseTagNumber("83"), commandData)
	if err != nil {
		return nil, fmt.Errorf("framing GPO command data: %w", err)
	}
	cmd := iso7816.NewCommandAPDU(proprietaryClass, ins, 0x00, 0x00, framed, iso7816.MaxShortLe)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	return parseGpoResponse(trace.Last().Response.Data)
}

func parseGpoResponse(data []byte) (*GpoResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedGPOResponse)
	}

	switch data[0] {
	case 0x80:
		// Format 1: 80 LL <AIP (2 bytes)> <AFL (rest)>, no inner TLV.
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: format-1 response too short", ErrMalformedGPOResponse)
		}
		payload := data[2:]
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: format-1 payload too short for AIP", ErrMalformedGPOResponse)
		}
		return &GpoResult{AIP: payload[:2], AFL: payload[2:]}, nil

	case 0x77:
		nodes, err := tlv.Parse(data, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGPOResponse, err)
		}
		root, ok := tlv.FindNodeRecursive(nodes, tlv.MustParseTagNumber("77"))
		if !ok {
			return nil, fmt.Errorf("%w: missing format-2 template", ErrMalformedGPOResponse)
		}
		aip, hasAIP := tlv.FindShallow(root.Children, tlv.MustParseTagNumber("82"))
		afl, hasAFL := tlv.FindShallow(root.Children, tlv.MustParseTagNumber("94"))
		if !hasAIP {
			return nil, fmt.Errorf("%w: format-2 template missing AIP (82)", ErrMalformedGPOResponse)
		}
		result := &GpoResult{AIP: aip.Value}
		if hasAFL {
			result.AFL = afl.Value
		}
		return result, nil

	default:
		return nil, fmt.Errorf("%w: leading byte %02X is neither 0x80 nor 0x77", ErrMalformedGPOResponse, data[0])
	}
}

// AcType selects which cryptogram GENERATE AC should request.
type AcType byte

const (
	AcTypeAAC  AcType = 0x00 // Application Authentication Cryptogram (decline)
	AcTypeTC   AcType = 0x40 // Transaction Certificate (offline approve)
	AcTypeARQC AcType = 0x80 // Authorization Request Cryptogram (go online)
)

// GenerateAcResult is the decoded GENERATE AC response.
type GenerateAcResult struct {
	CID         byte // Cryptogram Information Data
	ATC         []byte
	Cryptogram  []byte
	IssuerAppData []byte
}

// GrantedCryptogramType interprets CID bits 7-6 to report which cryptogram
// kind the card actually returned (it may differ from the type requested).
func (r GenerateAcResult) GrantedCryptogramType() AcType {
	return AcType(r.CID & 0xC0)
}

// GenerateAC sends GENERATE AC with the CDOL-built command data.
func (s *EmvSession) GenerateAC(acType AcType, commandData []byte) (*GenerateAcResult, error) {
	switch acType {
	case AcTypeAAC, AcTypeTC, AcTypeARQC:
	default:
		return nil, validationErrorf("acType", "must be AAC (0x00), TC (0x40), or ARQC (0x80), got %02X", byte(acType))
	}
	if len(commandData) == 0 {
		return nil, validationErrorf("commandData", "CDOL-built data must be non-empty")
	}
	ins, err := iso7816.NewInstruction(0xAE)
	if err != nil {
		return nil, err
	}
	cmd := iso7816.NewCommandAPDU(proprietaryClass, ins, byte(acType), 0x00, commandData, iso7816.MaxShortLe)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	return parseGenerateAcResponse(trace.Last().Response.Data)
}

func parseGenerateAcResponse(data []byte) (*GenerateAcResult, error) {
	nodes, err := tlv.Parse(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTLV, err)
	}

	var template tlv.Node
	var ok bool
	if template, ok = tlv.FindNodeRecursive(nodes, tlv.MustParseTagNumber("77")); !ok {
		if template, ok = tlv.FindNodeRecursive(nodes, tlv.MustParseTagNumber("80")); !ok {
			return nil, fmt.Errorf("%w: no GENERATE AC template (77/80) found", ErrMalformedTLV)
		}
		// Format 1 fallback: 80 is primitive, CID||ATC||AC concatenated.
		if len(template.Value) < 7 {
			return nil, fmt.Errorf("%w: format-1 GENERATE AC payload too short", ErrMalformedTLV)
		}
		return &GenerateAcResult{
			CID:        template.Value[0],
			ATC:        template.Value[1:3],
			Cryptogram: template.Value[3:],
		}, nil
	}

	cidNode, hasCID := tlv.FindShallow(template.Children, tlv.MustParseTagNumber("9F27"))
	atcNode, hasATC := tlv.FindShallow(template.Children, tlv.MustParseTagNumber("9F36"))
	acNode, hasAC := tlv.FindShallow(template.Children, tlv.MustParseTagNumber("9F26"))
	if !hasCID || len(cidNode.Value) != 1 {
		return nil, fmt.Errorf("%w: missing or malformed CID (9F27)", ErrMalformedTLV)
	}
	if !hasAC {
		return nil, fmt.Errorf("%w: missing Application Cryptogram (9F26)", ErrMalformedTLV)
	}

	result := &GenerateAcResult{
		CID:        cidNode.Value[0],
		Cryptogram: acNode.Value,
	}
	if hasATC {
		result.ATC = atcNode.Value
	}
	if iadNode, hasIAD := tlv.FindShallow(template.Children, tlv.MustParseTagNumber("9F10")); hasIAD {
		result.IssuerAppData = iadNode.Value
	}
	return result, nil
}

// VerifyPIN sends a plaintext PIN verification (INS VERIFY, P2=0x80) using
// an ISO 9564 Format 2 PIN block.
func (s *EmvSession) VerifyPIN(pin string) error {
	block, err := BuildPINBlock(pin)
	if err != nil {
		return err
	}
	ins, err := iso7816.NewInstruction(iso7816.INS_VERIFY)
	if err != nil {
		return err
	}
	cmd := iso7816.NewCommandAPDU(s.Class, ins, 0x00, 0x80, block, 0)
	_, err = s.send(cmd)
	if err == nil {
		return nil
	}
	var status *CardStatus
	if errors.As(err, &status) {
		if pinErr := classifyPinError(status.SW1, status.SW2); pinErr != nil {
			return pinErr
		}
	}
	return err
}

// ChangePIN sends a plaintext CHANGE/UNBLOCK PIN command (INS 0x24, P2=0x80)
// with data = oldPIN block || newPIN block.
func (s *EmvSession) ChangePIN(oldPIN, newPIN string) error {
	oldBlock, err := BuildPINBlock(oldPIN)
	if err != nil {
		return err
	}
	newBlock, err := BuildPINBlock(newPIN)
	if err != nil {
		return err
	}
	data := append(append([]byte{}, oldBlock...), newBlock...)
	ins, err := iso7816.NewInstruction(iso7816.INS_CHANGE_REFERENCE_DATA)
	if err != nil {
		return err
	}
	cmd := iso7816.NewCommandAPDU(s.Class, ins, 0x00, 0x80, data, 0)
	_, err = s.send(cmd)
	if err == nil {
		return nil
	}
	var status *CardStatus
	if errors.As(err, &status) {
		if pinErr := classifyPinError(status.SW1, status.SW2); pinErr != nil {
			return pinErr
		}
	}
	return err
}

// InternalAuthenticate sends INTERNAL AUTHENTICATE (INS 0x88) with the
// DDOL-built authentication-related data, used for offline Dynamic Data
// Authentication.
func (s *EmvSession) InternalAuthenticate(commandData []byte) ([]byte, error) {
	if len(commandData) == 0 {
		return nil, validationErrorf("commandData", "DDOL-built data must be non-empty")
	}
	ins, err := iso7816.NewInstruction(iso7816.INS_INTERNAL_AUTHENTICATE)
	if err != nil {
		return nil, err
	}
	cmd := iso7816.NewCommandAPDU(s.Class, ins, 0x00, 0x00, commandData, iso7816.MaxShortLe)
	trace, err := s.send(cmd)
	if err != nil {
		return nil, err
	}
	return trace.Last().Response.Data, nil
}
