// Package bytesize provides human-friendly byte size parsing and formatting.
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse parses a human-friendly byte size string.
//
// Supported units: B, KB, MB, GB, TB (case-insensitive).
// The binary prefix (1024-based) is used.
//
// Returns int64 to safely integrate with standard library functions like http.MaxBytesReader.
//
// Examples:
//
//	Parse("512MB")  // 536870912 bytes
//	Parse("1GB")    // 1073741824 bytes
//	Parse("1.5GB")  // 1610612736 bytes
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	s = strings.ToUpper(s)

	// Try the longest suffix first to avoid matching "B" before "KB"
	units := []string{"TB", "GB", "MB", "KB", "B"}
	var unit string
	var valueStr string

	for _, u := range units {
		if strings.HasSuffix(s, u) {
			unit = u
			valueStr = strings.TrimSuffix(s, u)
			break
		}
	}

	if unit == "" {
		return 0, fmt.Errorf("invalid size %q: missing unit (supported: B, KB, MB, GB, TB)", s)
	}

	valueStr = strings.TrimSpace(valueStr)
	if valueStr == "" {
		return 0, fmt.Errorf("invalid size %q: missing numeric value", s)
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if value < 0 {
		return 0, fmt.Errorf("invalid size %q: negative values are not allowed", s)
	}

	bytes := value * float64(multiplier(unit))
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q: value overflows int64", s)
	}

	return int64(bytes), nil
}

// Format renders a byte count as a short human-readable string, e.g. "1.5 MB".
func Format(n int64) string {
	switch {
	case n >= 1<<40:
		return trimZero(float64(n)/float64(1<<40)) + " TB"
	case n >= 1<<30:
		return trimZero(float64(n)/float64(1<<30)) + " GB"
	case n >= 1<<20:
		return trimZero(float64(n)/float64(1<<20)) + " MB"
	case n >= 1<<10:
		return trimZero(float64(n)/float64(1<<10)) + " KB"
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func multiplier(unit string) int64 {
	switch unit {
	case "KB":
		return 1 << 10
	case "MB":
		return 1 << 20
	case "GB":
		return 1 << 30
	case "TB":
		return 1 << 40
	default:
		return 1
	}
}

func trimZero(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
