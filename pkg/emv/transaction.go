package emv

import (
	"errors"
	"time"

	"github.com/tomkp/go-emv/pkg/tlv"
)

// TRANSACTION ORCHESTRATOR (Component I): drives a full offline-capable EMV
// flow after an application has already been selected: GET PROCESSING
// OPTIONS, read every record the AFL names, assemble CDOL1 from the
// request, GENERATE AC, decode the result. Modeled as a linear state
// machine (INIT -> SELECTED -> GPO_OK -> READING -> READ_DONE -> COMPLETE);
// the state itself is not exposed, only which TransactionReport fields got
// populated before a failure ended the run.
//
// The orchestrator never panics and never returns a Go error for a
// card-side failure: every outcome, successful or not, comes back as a
// TransactionReport so the caller always has whatever partial state was
// collected before the failure.

// CryptogramType is the terminal-visible classification of a GENERATE AC
// response, read from CID bits 7-6.
type CryptogramType int

const (
	CryptogramAAC CryptogramType = iota
	CryptogramTC
	CryptogramARQC
	CryptogramReserved
)

func cryptogramTypeFromCID(cid byte) CryptogramType {
	switch cid & 0xC0 {
	case 0x00:
		return CryptogramAAC
	case 0x40:
		return CryptogramTC
	case 0x80:
		return CryptogramARQC
	default:
		return CryptogramReserved
	}
}

// TransactionRequest is the caller-supplied input to RunTransaction.
type TransactionRequest struct {
	AmountMinorUnits uint64
	CurrencyCode     uint16
	TransactionType  byte
	CryptogramType   AcType

	// PDOL is the raw tag-9F38 bytes from the selected application's FCI
	// (FCI.ProprietaryTemplate.PDOL), if present. A nil/empty PDOL sends an
	// empty GPO command buffer.
	PDOL []byte

	// PdolOverrides / CdolOverrides replace the orchestrator's computed
	// defaults, entry-by-entry, before BuildDOL runs. A tag present here
	// wins even if the default map also sets it.
	PdolOverrides map[tlv.TagNumber][]byte
	CdolOverrides map[tlv.TagNumber][]byte

	// Now is the transaction date/time source (tag 9A). Zero value means
	// "use time.Now()".
	Now time.Time
}

// TransactionReport is always returned from RunTransaction, success or not,
// carrying whatever state was collected before the run stopped.
type TransactionReport struct {
	Success               bool
	Error                 string
	AIP                   []byte
	AFL                   []AflEntry
	Records               [][]byte
	ReturnedCryptogramType CryptogramType
	HasCryptogramType      bool
	Cryptogram            []byte
	ATC                   uint16
	HasATC                bool
	RawGenerateAcResponse []byte
}

func failureReport(r *TransactionReport, err error) *TransactionReport {
	r.Success = false
	r.Error = err.Error()
	return r
}

// RunTransaction executes GPO -> read AFL records -> build CDOL1 ->
// GENERATE AC against an already-selected application, per req.
func (s *EmvSession) RunTransaction(req TransactionRequest) *TransactionReport {
	report := &TransactionReport{}

	var gpoCommandData []byte
	if len(req.PDOL) > 0 {
		pdolEntries, err := ParseDOL(req.PDOL)
		if err != nil {
			return failureReport(report, err)
		}
		pdolValues := defaultPDOLValues(req, s.Random)
		for tag, v := range req.PdolOverrides {
			pdolValues[tag] = v
		}
		gpoCommandData = BuildDOL(pdolEntries, pdolValues)
	}

	gpo, err := s.GetProcessingOptions(gpoCommandData)
	if err != nil {
		return failureReport(report, err)
	}
	report.AIP = gpo.AIP

	afl := ParseAFL(gpo.AFL)
	report.AFL = afl

	var records [][]byte
	for _, entry := range afl {
		for recNum := entry.FirstRecord; recNum <= entry.LastRecord; recNum++ {
			data, err := s.ReadRecord(entry.SFI, recNum)
			if err != nil {
				// Non-fatal: a card's AFL sometimes claims records that
				// are not actually readable (SDA-only placeholders).
				continue
			}
			records = append(records, data)
		}
	}
	report.Records = records

	cdolEntries, cdolErr := findCDOL1(records)
	if cdolErr != nil {
		return failureReport(report, cdolErr)
	}

	cdolValues := defaultCDOLValues(req, s.Random)
	for tag, v := range req.CdolOverrides {
		cdolValues[tag] = v
	}
	cdolCommandData := BuildDOL(cdolEntries, cdolValues)

	acResult, err := s.GenerateAC(req.CryptogramType, cdolCommandData)
	if err != nil {
		return failureReport(report, err)
	}

	report.ReturnedCryptogramType = cryptogramTypeFromCID(acResult.CID)
	report.HasCryptogramType = true
	report.Cryptogram = acResult.Cryptogram
	if len(acResult.ATC) == 2 {
		report.ATC = uint16(acResult.ATC[0])<<8 | uint16(acResult.ATC[1])
		report.HasATC = true
	}

	report.Success = true
	return report
}

// findCDOL1 locates tag 0x8C (CDOL1) among the AFL-read records and parses
// it. Returns ErrMalformedTLV if no record carries it.
func findCDOL1(records [][]byte) ([]DolEntry, error) {
	cdol1Tag := tlv.MustParseTagNumber("8C")
	for _, rec := range records {
		nodes, err := tlv.Parse(rec, true)
		if err != nil {
			continue
		}
		if value, ok := tlv.FindRecursive(nodes, cdol1Tag); ok {
			return ParseDOL(value)
		}
	}
	return nil, errors.New("no CDOL1 (tag 8C) found in AFL records")
}

// defaultCDOLValues seeds the standard CDOL1 tag->value map from req, per
// EMV Book 3's terminal-supplied data objects.
func defaultCDOLValues(req TransactionRequest, random RandomSource) map[tlv.TagNumber][]byte {
	unpredictable := resolveUnpredictableNumber(random)

	return map[tlv.TagNumber][]byte{
		tlv.MustParseTagNumber("9F02"): AmountToBCD(req.AmountMinorUnits),
		tlv.MustParseTagNumber("9F03"): make([]byte, 6),
		tlv.MustParseTagNumber("9F1A"): CurrencyCodeBytes(req.CurrencyCode),
		tlv.MustParseTagNumber("95"):   make([]byte, 5),
		tlv.MustParseTagNumber("5F2A"): CurrencyCodeBytes(req.CurrencyCode),
		tlv.MustParseTagNumber("9A"):   DateBCD(resolveNow(req.Now)),
		tlv.MustParseTagNumber("9C"):   []byte{req.TransactionType},
		tlv.MustParseTagNumber("9F37"): unpredictable[:],
	}
}

// defaultPDOLValues seeds the same terminal-supplied data objects for the
// PDOL; cards commonly request a subset of the same tags CDOL1 does (most
// often 9F02, 9F1A, 5F2A, 9A, 9C, 9F37), so the two share one source of
// terminal values.
func defaultPDOLValues(req TransactionRequest, random RandomSource) map[tlv.TagNumber][]byte {
	return defaultCDOLValues(req, random)
}

func resolveNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func resolveUnpredictableNumber(random RandomSource) [4]byte {
	if random == nil {
		return [4]byte{}
	}
	n, err := random.UnpredictableNumber()
	if err != nil {
		return [4]byte{}
	}
	return n
}
