package cam

import "github.com/gerbonara-go/gerbonara/unit"

// Notation is the coordinate notation: absolute or incremental.
type Notation int

const (
	NotationUnknown Notation = iota
	Absolute
	Incremental
)

// ZeroSuppression is the fixed-point zero-suppression convention.
type ZeroSuppression int

const (
	ZeroSuppressionUnknown ZeroSuppression = iota
	Leading
	Trailing
	NoSuppression
)

// NumberFormat carries the discovered (or declared) digit counts for the
// coordinate number codec. A count of -1 means "unknown".
type NumberFormat struct {
	Integer    int
	Fractional int
}

// Unknown reports whether either digit count is undiscovered.
func (f NumberFormat) Unknown() bool {
	return f.Integer < 0 || f.Fractional < 0
}

// UnknownNumberFormat is the zero-information NumberFormat.
var UnknownNumberFormat = NumberFormat{Integer: -1, Fractional: -1}

// FileSettings is the value type carrying the per-file coordinate
// interpretation: unit, notation, zero suppression, and number format.
//
// Invariant: after a complete successful parse, Unit and NumberFormat are
// both known (spec.md §3.1).
type FileSettings struct {
	Unit            unit.Unit
	Notation        Notation
	ZeroSuppression ZeroSuppression
	NumberFormat    NumberFormat
}

// NewFileSettings returns settings with everything unknown, the state a
// parser starts from before any FS/MO/dialect hint is seen.
func NewFileSettings() FileSettings {
	return FileSettings{
		Notation:        NotationUnknown,
		ZeroSuppression: ZeroSuppressionUnknown,
		NumberFormat:    UnknownNumberFormat,
	}
}

// Known reports whether the settings carry enough information to decode a
// coordinate that omits its decimal point.
func (s FileSettings) Known() bool {
	return s.Unit.Known() && !s.NumberFormat.Unknown()
}
