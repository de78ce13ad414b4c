package cam

import "fmt"

// ErrorKind enumerates the irrecoverable (parse-aborting) error conditions
// from the error handling design.
type ErrorKind int

const (
	// SyntaxError is an ill-formed command that cannot be recovered.
	SyntaxError ErrorKind = iota
	// FormatMismatch is an FS with unequal X/Y widths, or an Allegro
	// sidecar specifying both leading and trailing suppression.
	FormatMismatch
	// NumberFormatUnknown is a coordinate without a decimal point
	// encountered before any number format was announced or inferred.
	NumberFormatUnknown
	// UndefinedTool is an Excellon tool selection before definition.
	UndefinedTool
	// UndefinedAperture is a Gerber aperture selection before definition.
	UndefinedAperture
	// RegionMisuse is a G37 outside a region, or a D03 inside one.
	RegionMisuse
	// IncludeError is an IF statement that attempted path traversal,
	// referenced a missing file, or produced infinite recursion.
	IncludeError
	// AmbiguousFormat names a format that cannot be resolved. No parser in
	// this module returns it; an Allegro sidecar specifying both lead and
	// trail zero suppression is reported as FormatMismatch.
	AmbiguousFormat
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case FormatMismatch:
		return "FormatMismatch"
	case NumberFormatUnknown:
		return "NumberFormatUnknown"
	case UndefinedTool:
		return "UndefinedTool"
	case UndefinedAperture:
		return "UndefinedAperture"
	case RegionMisuse:
		return "RegionMisuse"
	case IncludeError:
		return "IncludeError"
	case AmbiguousFormat:
		return "AmbiguousFormat"
	default:
		return "Error"
	}
}

// ParseError is a position-annotated, irrecoverable parse failure. Its
// Error() format is "<filename>:<line> \"<offending text>\": <reason>" per
// the error handling design's propagation policy.
type ParseError struct {
	Kind    ErrorKind
	File    string
	Line    int
	Text    string
	Reason  string
	Wrapped error
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d %q: %s", file, e.Line, e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }

// Errorf builds a *ParseError, following fmt.Errorf conventions for Reason.
func Errorf(kind ErrorKind, file string, line int, text string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		File:   file,
		Line:   line,
		Text:   text,
		Reason: fmt.Sprintf(format, args...),
	}
}
