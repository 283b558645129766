package emv

import (
	"fmt"
	"log/slog"
)

// DISCOVERY (Component H): locating candidate applications on the card
// before a transaction starts. Generalizes the demo flow in the teacher's
// main.go (SELECT PSE -> read directory records -> collect AIDs) into a
// reusable function, adding the PPSE (contactless) fallback the demo never
// needed and a manual SFI-scan fallback for cards that return FCI without a
// proprietary SFI at all.

// CandidateApp is one application discovered via PSE/PPSE directory or
// manual SFI scan.
type CandidateApp struct {
	AID                          []byte
	Label                        string
	PreferredName                string
	PriorityIndicator            byte
	HasPriorityIndicator         bool
}

// DiscoveryResult reports what discovery found and how.
type DiscoveryResult struct {
	Apps           []CandidateApp
	UsedPPSE       bool
	UsedSFIFallback bool
}

// maxDirectoryRecords bounds the directory scan to the first 10 records of
// the SFI, terminating early on the first non-OK response.
const maxDirectoryRecords = 10

// defaultFallbackSFI is tried when SELECT PSE/PPSE succeeds but the FCI
// carries no proprietary SFI (tag 0x88) — the record-1 directory location
// several non-compliant cards use in practice. The teacher's demo flow
// assumed this implicitly: it only walked Step 2 when Step 1 yielded a
// nonzero SFI and never had a fallback of its own.
const defaultFallbackSFI = 1

// DiscoverApplications attempts PPSE first (contactless-preferred, per EMV
// Book 1 discovery guidance), then PSE, then falls back to scanning the
// default SFI directly. It never returns an error for "no directory found":
// a caller is always free to fall back to selecting a known AID directly,
// so the empty DiscoveryResult is itself a valid outcome.
func (s *EmvSession) DiscoverApplications() (*DiscoveryResult, error) {
	if fci, err := s.SelectPPSE(); err == nil {
		sfi := sfiFromFCI(fci)
		usedFallback := sfi == 0
		if usedFallback {
			slog.Debug("directory SFI not found in FCI, trying fallback", "fallback_sfi", defaultFallbackSFI)
			sfi = defaultFallbackSFI
		}
		apps := s.readDirectoryApps(sfi)
		return &DiscoveryResult{Apps: apps, UsedPPSE: true, UsedSFIFallback: usedFallback}, nil
	}

	fci, err := s.SelectPSE()
	if err != nil {
		apps, scanErr := s.scanFallbackSFI()
		if scanErr != nil {
			return nil, fmt.Errorf("PSE/PPSE selection failed (%v) and fallback scan failed: %w", err, scanErr)
		}
		return &DiscoveryResult{Apps: apps, UsedSFIFallback: true}, nil
	}

	sfi := sfiFromFCI(fci)
	if sfi == 0 {
		apps, scanErr := s.scanFallbackSFI()
		if scanErr != nil {
			return nil, scanErr
		}
		return &DiscoveryResult{Apps: apps, UsedSFIFallback: true}, nil
	}

	return &DiscoveryResult{Apps: s.readDirectoryApps(sfi)}, nil
}

func sfiFromFCI(fci *FCI) byte {
	if len(fci.ProprietaryTemplate.SFI) == 0 {
		return 0
	}
	return fci.ProprietaryTemplate.SFI[0]
}

func (s *EmvSession) scanFallbackSFI() ([]CandidateApp, error) {
	slog.Debug("directory SFI not found in FCI, trying fallback", "fallback_sfi", defaultFallbackSFI)
	apps := s.readDirectoryApps(defaultFallbackSFI)
	if len(apps) == 0 {
		return nil, fmt.Errorf("no directory entries found at fallback SFI %d", defaultFallbackSFI)
	}
	return apps, nil
}

// readDirectoryApps walks records 1..maxDirectoryRecords under sfi, parsing
// each as a DirectoryRecord and collecting every ApplicationTemplate it
// carries. The scan terminates at the first non-OK readRecord response,
// matching observed directory-file behavior: a gap in record numbering
// means the directory has ended, not that a record was merely skipped.
func (s *EmvSession) readDirectoryApps(sfi byte) []CandidateApp {
	var apps []CandidateApp
	for recNum := byte(1); recNum <= maxDirectoryRecords; recNum++ {
		data, err := s.ReadRecord(sfi, recNum)
		if err != nil {
			break
		}

		record, err := ParseDirectoryRecord(data)
		if err != nil {
			continue
		}

		for _, app := range record.Applications {
			if len(app.AID) == 0 {
				continue
			}
			candidate := CandidateApp{
				AID:           app.AID,
				Label:         string(app.ApplicationLabel),
				PreferredName: string(app.ApplicationPreferredName),
			}
			if len(app.ApplicationPriorityIndicator) > 0 {
				candidate.HasPriorityIndicator = true
				candidate.PriorityIndicator = app.ApplicationPriorityIndicator[0]
			}
			apps = append(apps, candidate)
		}
	}
	return apps
}
