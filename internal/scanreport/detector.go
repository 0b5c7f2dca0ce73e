package scanreport

import (
	"path/filepath"
	"strings"
)

// DetectFormat classifies a scanner output file by name.
func DetectFormat(path string) Format {
	base := filepath.Base(path)
	switch {
	case filepath.Ext(base) == ".sarif":
		return FormatSARIF
	case base == "npm-audit.json":
		return FormatNpmAudit
	case strings.HasPrefix(base, "trivy") && filepath.Ext(base) == ".json":
		return FormatTrivy
	default:
		return FormatUnknown
	}
}

// ScannerName derives the scan result name for a file.
func ScannerName(path string, format Format) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch format {
	case FormatNpmAudit:
		return "npm-audit"
	case FormatTrivy:
		return "trivy-" + stem
	default:
		return stem
	}
}
