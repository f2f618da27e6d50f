package scanner

import (
	"time"

	"github.com/theopenlane/spectra/internal/brand"
)

const (
	// DefaultScanTimeout covers a full reputation lookup followed by the slowest probe
	DefaultScanTimeout = 30 * time.Second
	// DefaultMaxConcurrency bounds how many URLs are analyzed at once
	DefaultMaxConcurrency = 8
)

// ScanOptions configures the scanner behavior
type ScanOptions struct {
	// ScanTimeout is the hard budget for one Scan call
	ScanTimeout time.Duration
	// MaxConcurrency bounds concurrent URL analysis
	MaxConcurrency int
	// Matcher decides brand matches for local scoring
	Matcher *brand.Matcher
	// Now stamps results
	Now func() time.Time
}

// ScanOption is a functional option for configuring the scanner
type ScanOption func(*ScanOptions)

// DefaultScanOptions returns default scanner options
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		ScanTimeout:    DefaultScanTimeout,
		MaxConcurrency: DefaultMaxConcurrency,
		Matcher:        brand.NewMatcher(),
		Now:            time.Now,
	}
}

// WithScanTimeout sets the overall scan deadline
func WithScanTimeout(timeout time.Duration) ScanOption {
	return func(o *ScanOptions) {
		if timeout > 0 {
			o.ScanTimeout = timeout
		}
	}
}

// WithMaxConcurrency sets how many URLs are analyzed in parallel
func WithMaxConcurrency(n int) ScanOption {
	return func(o *ScanOptions) {
		if n > 0 {
			o.MaxConcurrency = n
		}
	}
}

// WithMatcher sets the brand matcher; it should be the one the URL engine uses
func WithMatcher(m *brand.Matcher) ScanOption {
	return func(o *ScanOptions) {
		if m != nil {
			o.Matcher = m
		}
	}
}

// WithClock replaces time.Now for the scanned_at stamp
func WithClock(now func() time.Time) ScanOption {
	return func(o *ScanOptions) {
		if now != nil {
			o.Now = now
		}
	}
}
