package cam

import "github.com/sirupsen/logrus"

// DiagKind classifies a diagnostic delivered through a Sink. Recoverable
// kinds never abort a parse; SyntaxError-equivalent conditions are instead
// returned as a *ParseError from the parser itself.
type DiagKind int

const (
	// SyntaxWarning marks a statement that parsed but deviates from spec.
	SyntaxWarning DiagKind = iota
	// DeprecationWarning marks use of a deprecated construct (image
	// transforms, Excellon M00, etc).
	DeprecationWarning
	// UnknownStatementWarning marks a statement line matched by no handler
	// in the dispatch table; it is preserved as a comment.
	UnknownStatementWarning
	// ResourceWarning marks exhaustion or near-exhaustion of an
	// implementation-defined resource (e.g. >99 Excellon tools).
	ResourceWarning
)

// String renders the diagnostic kind for logging.
func (k DiagKind) String() string {
	switch k {
	case SyntaxWarning:
		return "syntax"
	case DeprecationWarning:
		return "deprecation"
	case UnknownStatementWarning:
		return "unknown-statement"
	case ResourceWarning:
		return "resource"
	default:
		return "warning"
	}
}

// Sink receives diagnostics in the order the input lines that produced them
// were processed. A Sink must never panic; it is called synchronously from
// the parser and must not retain the message slice it's handed.
type Sink func(msg string, kind DiagKind)

// NopSink discards every diagnostic. Useful when a caller truly doesn't care.
func NopSink(string, DiagKind) {}

// NewLogrusSink adapts a *logrus.Logger into a Sink. DeprecationWarning and
// SyntaxWarning log at Warn level; UnknownStatementWarning and
// ResourceWarning log at Info level, since both are routine on real-world
// dialect-heavy input.
func NewLogrusSink(log *logrus.Logger) Sink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(msg string, kind DiagKind) {
		entry := log.WithField("kind", kind.String())
		switch kind {
		case DeprecationWarning, SyntaxWarning:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}

// Diagnostic is one recorded (msg, kind) pair, as buffered by CollectingSink.
type Diagnostic struct {
	Message string
	Kind    DiagKind
}

// CollectingSink buffers diagnostics instead of delivering them anywhere,
// for callers (principally tests) that want to assert on what was emitted.
type CollectingSink struct {
	Diagnostics []Diagnostic
}

// Sink returns the cam.Sink bound to this collector.
func (c *CollectingSink) Sink() Sink {
	return func(msg string, kind DiagKind) {
		c.Diagnostics = append(c.Diagnostics, Diagnostic{Message: msg, Kind: kind})
	}
}

// Has reports whether any collected diagnostic has the given kind.
func (c *CollectingSink) Has(kind DiagKind) bool {
	for _, d := range c.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
