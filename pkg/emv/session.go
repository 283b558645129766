package emv

import (
	"fmt"

	"github.com/tomkp/go-emv/pkg/iso7816"
)

// SESSION: EmvSession wires an iso7816.Client (which already handles 61xx/6Cxx
// auto-retry) to EMV-specific command builders and response parsers. It holds
// the terminal-side state a transaction needs across multiple commands: the
// CLA to use, a random source for the unpredictable number, and whether
// BER-TLV parsing should run in lenient mode.

// Transport is the physical/logical connection a Client sends bytes over.
// github.com/ebfe/scard's *scard.Card satisfies this directly.
type Transport interface {
	Transmit(cmd []byte) ([]byte, error)
}

// SessionOptions configures an EmvSession's behavior.
type SessionOptions struct {
	// Class is the CLA byte for SELECT, READ RECORD, VERIFY, CHANGE PIN and
	// INTERNAL AUTHENTICATE; GET DATA, GET PROCESSING OPTIONS and GENERATE AC
	// always use the proprietary class 0x80. The zero value (0x00) is the
	// standard interindustry class.
	Class iso7816.Class

	// Lenient is copied to EmvSession.Lenient. No command method reads it:
	// AFL records are always parsed in pkg/tlv.Parse's lenient mode, and GPO
	// and GENERATE AC responses always in strict mode.
	Lenient bool

	// Random supplies the unpredictable number for GENERATE AC/GPO. Defaults
	// to CryptoRandomSource if nil.
	Random RandomSource
}

// EmvSession drives a single card session: SELECT, GPO, READ RECORD,
// GENERATE AC, VERIFY PIN, and the rest of the EMV command layer all flow
// through its Client.
type EmvSession struct {
	Client  *iso7816.Client
	Class   iso7816.Class
	Lenient bool
	Random  RandomSource

	// LastTrace holds the transaction trace of the most recently sent
	// command, including any 61xx/6Cxx auto-retry steps. Callers that want
	// a byte-level report of a command (a --verbose CLI flag, a debug log)
	// read this after a command method returns rather than threading the
	// trace through every method's return signature.
	LastTrace iso7816.Trace
}

// NewSession builds an EmvSession over transport with the given options.
func NewSession(transport Transport, opts SessionOptions) *EmvSession {
	random := opts.Random
	if random == nil {
		random = CryptoRandomSource{}
	}
	return &EmvSession{
		Client:  iso7816.NewClient(transport),
		Class:   opts.Class,
		Lenient: opts.Lenient,
		Random:  random,
	}
}

// send is the shared transmit-and-check-trace helper every command method
// uses: issue cmd, and if the final status word in the trace isn't success,
// wrap it as a CardStatus error instead of requiring each caller to inspect
// the trace.
func (s *EmvSession) send(cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	trace, err := s.Client.Send(cmd)
	s.LastTrace = trace
	if err != nil {
		return nil, &TransportError{Op: cmd.Instruction.Verbose(), Err: err}
	}
	last := trace.Last()
	if last == nil {
		return trace, fmt.Errorf("%w: empty trace", ErrShortResponse)
	}
	if !last.Response.Status.IsSuccess() {
		status := CardStatus{SW1: last.Response.Status.SW1(), SW2: last.Response.Status.SW2()}
		return trace, &status
	}
	return trace, nil
}
