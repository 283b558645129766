// Package cliutil renders emv session results to the terminal, in either
// the teacher-style ASCII report format or as JSON for scripting.
package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tomkp/go-emv/pkg/emv"
)

// Format selects how a command's result is rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps the --format flag value to a Format, defaulting to text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q, want \"text\" or \"json\"", s)
	}
}

// RenderJSON marshals v as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DescribeDiscovery renders a DiscoveryResult as an ASCII report, in the
// same "=== ... ===" + field-listing style as the EMV package's own
// Describe() methods.
func DescribeDiscovery(result *emv.DiscoveryResult) string {
	var sb strings.Builder
	sb.WriteString("=== DISCOVERY REPORT ===\n")

	source := "PSE"
	switch {
	case result.UsedPPSE:
		source = "PPSE"
	case result.UsedSFIFallback:
		source = "fallback SFI scan"
	}
	sb.WriteString(fmt.Sprintf("    - Source: %s\n", source))
	sb.WriteString(fmt.Sprintf("    - Applications found: %d\n", len(result.Apps)))

	for i, app := range result.Apps {
		sb.WriteString(fmt.Sprintf("    [%d] AID: %X\n", i+1, app.AID))
		if app.Label != "" {
			sb.WriteString(fmt.Sprintf("        Label: %q\n", app.Label))
		}
		if app.PreferredName != "" {
			sb.WriteString(fmt.Sprintf("        Preferred name: %q\n", app.PreferredName))
		}
		if app.HasPriorityIndicator {
			sb.WriteString(fmt.Sprintf("        Priority: %d\n", app.PriorityIndicator))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// DescribeTransaction renders a TransactionReport as an ASCII report.
func DescribeTransaction(report *emv.TransactionReport) string {
	var sb strings.Builder
	sb.WriteString("=== TRANSACTION REPORT ===\n")

	if !report.Success {
		sb.WriteString(fmt.Sprintf("    - Result: FAILED (%s)\n", report.Error))
	} else {
		sb.WriteString("    - Result: OK\n")
	}

	if len(report.AIP) > 0 {
		sb.WriteString(fmt.Sprintf("    - AIP: %X\n", report.AIP))
	}
	if len(report.AFL) > 0 {
		sb.WriteString(fmt.Sprintf("    - AFL entries: %d, records read: %d\n", len(report.AFL), len(report.Records)))
	}
	if report.HasCryptogramType {
		sb.WriteString(fmt.Sprintf("    - Cryptogram type: %s\n", cryptogramTypeName(report.ReturnedCryptogramType)))
		sb.WriteString(fmt.Sprintf("    - Cryptogram: %X\n", report.Cryptogram))
	}
	if report.HasATC {
		sb.WriteString(fmt.Sprintf("    - ATC: %d\n", report.ATC))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func cryptogramTypeName(t emv.CryptogramType) string {
	switch t {
	case emv.CryptogramAAC:
		return "AAC (declined)"
	case emv.CryptogramTC:
		return "TC (approved offline)"
	case emv.CryptogramARQC:
		return "ARQC (go online)"
	default:
		return "reserved"
	}
}
