package emv

import "encoding/binary"

// CVM ENGINE (Component E): tag 0x8E carries an amount pair (X, Y) followed
// by an ordered list of 2-byte (method, condition) rules, per EMV Book 3
// Annex C3. Evaluate walks the rules in order and returns the first whose
// condition holds; rule order is never reordered — EMV CVM selection is
// strictly first-match by priority.

// CvmMethod is the cardholder verification method byte's low 6 bits,
// looked up per EMV Book 3 Annex C3, Table 44/45.
type CvmMethod int

const (
	CvmFail CvmMethod = iota
	CvmPlaintextPinByICC
	CvmEncipheredPinOnline
	CvmPlaintextPinByICCThenSignature
	CvmEncipheredPinByICC
	CvmEncipheredPinByICCThenSignature
	CvmSignature
	CvmNoCVM
	CvmUnknown
)

// cvmMethodTable maps the raw method code (cvmByte & 0x3F) to CvmMethod.
var cvmMethodTable = map[byte]CvmMethod{
	0x00: CvmFail,
	0x01: CvmPlaintextPinByICC,
	0x02: CvmEncipheredPinOnline,
	0x03: CvmPlaintextPinByICCThenSignature,
	0x04: CvmEncipheredPinByICC,
	0x05: CvmEncipheredPinByICCThenSignature,
	0x1E: CvmSignature,
	0x1F: CvmNoCVM,
}

// CvmCondition is the CVM condition code, looked up per EMV Book 3 Annex
// C3, Table 46.
type CvmCondition int

const (
	CvmCondAlways CvmCondition = iota
	CvmCondUnattendedCash
	CvmCondNotUnattendedCashOrManualOrCashback
	CvmCondTerminalSupportsCVM
	CvmCondManualCash
	CvmCondPurchaseWithCashback
	CvmCondAmountUnderX
	CvmCondAmountOverX
	CvmCondAmountUnderY
	CvmCondAmountOverY
	CvmCondUnknown
)

var cvmConditionTable = map[byte]CvmCondition{
	0x00: CvmCondAlways,
	0x01: CvmCondUnattendedCash,
	0x02: CvmCondNotUnattendedCashOrManualOrCashback,
	0x03: CvmCondTerminalSupportsCVM,
	0x04: CvmCondManualCash,
	0x05: CvmCondPurchaseWithCashback,
	0x06: CvmCondAmountUnderX,
	0x07: CvmCondAmountOverX,
	0x08: CvmCondAmountUnderY,
	0x09: CvmCondAmountOverY,
}

// CvmRule is one entry in a CvmList.
type CvmRule struct {
	Method              CvmMethod
	Condition           CvmCondition
	FailIfUnsuccessful  bool // negation of bit 6 of the CVM method byte
}

// CvmList is the parsed tag 0x8E payload.
type CvmList struct {
	AmountX uint32
	AmountY uint32
	Rules   []CvmRule
}

// ParseCVMList parses a tag 0x8E payload. Fewer than 8 bytes yields an
// empty rule list with both amounts zero. Bytes after the 8-byte amount
// prefix are read as 2-byte (method, condition) pairs; a final odd
// trailing byte, if any, is dropped.
func ParseCVMList(data []byte) CvmList {
	if len(data) < 8 {
		return CvmList{}
	}

	list := CvmList{
		AmountX: binary.BigEndian.Uint32(data[0:4]),
		AmountY: binary.BigEndian.Uint32(data[4:8]),
	}

	rest := data[8:]
	pairs := len(rest) / 2
	list.Rules = make([]CvmRule, 0, pairs)
	for i := 0; i < pairs; i++ {
		cvmByte := rest[2*i]
		condByte := rest[2*i+1]

		method, ok := cvmMethodTable[cvmByte&0x3F]
		if !ok {
			method = CvmUnknown
		}
		condition, ok := cvmConditionTable[condByte]
		if !ok {
			condition = CvmCondUnknown
		}

		list.Rules = append(list.Rules, CvmRule{
			Method:             method,
			Condition:          condition,
			FailIfUnsuccessful: cvmByte&0x40 == 0,
		})
	}

	return list
}

// CvmContext is the transaction-side state CVM rule conditions evaluate
// against.
type CvmContext struct {
	Amount               uint64
	HasAmount            bool
	TerminalSupportsCVM  bool
	UnattendedCash       bool
	ManualCash           bool
	PurchaseWithCashback bool
}

// Evaluate returns the first rule whose condition holds against ctx, in
// list order. CvmCondUnknown never matches. Amount comparisons are strict
// (< or >) and require ctx.HasAmount.
func (l CvmList) Evaluate(ctx CvmContext) (CvmRule, bool) {
	for _, rule := range l.Rules {
		if l.conditionHolds(rule.Condition, ctx) {
			return rule, true
		}
	}
	return CvmRule{}, false
}

func (l CvmList) conditionHolds(cond CvmCondition, ctx CvmContext) bool {
	switch cond {
	case CvmCondAlways:
		return true
	case CvmCondUnattendedCash:
		return ctx.UnattendedCash
	case CvmCondNotUnattendedCashOrManualOrCashback:
		return !ctx.UnattendedCash && !ctx.ManualCash && !ctx.PurchaseWithCashback
	case CvmCondTerminalSupportsCVM:
		return ctx.TerminalSupportsCVM
	case CvmCondManualCash:
		return ctx.ManualCash
	case CvmCondPurchaseWithCashback:
		return ctx.PurchaseWithCashback
	case CvmCondAmountUnderX:
		return ctx.HasAmount && ctx.Amount < uint64(l.AmountX)
	case CvmCondAmountOverX:
		return ctx.HasAmount && ctx.Amount > uint64(l.AmountX)
	case CvmCondAmountUnderY:
		return ctx.HasAmount && ctx.Amount < uint64(l.AmountY)
	case CvmCondAmountOverY:
		return ctx.HasAmount && ctx.Amount > uint64(l.AmountY)
	default:
		return false
	}
}
