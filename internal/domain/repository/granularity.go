package repository

import "time"

// Granularity is a bar bucket size. Gran1m is the native feed granularity,
// Gran5m is rolled up from five natives.
type Granularity string

const (
	Gran1m Granularity = "1m"
	Gran5m Granularity = "5m"
)

// IsValidGranularity returns true if g is a supported granularity.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case Gran1m, Gran5m:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the native granularity.
func DefaultGranularity() Granularity { return Gran1m }

// NormalizeGranularity converts a raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}

// Minutes returns the bucket size in minutes.
func (g Granularity) Minutes() int {
	switch g {
	case Gran5m:
		return 5
	default:
		return 1
	}
}

// Duration returns the bucket size as a time.Duration.
func (g Granularity) Duration() time.Duration {
	return time.Duration(g.Minutes()) * time.Minute
}
