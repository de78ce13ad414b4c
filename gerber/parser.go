// Package gerber implements the RS-274X tokenizer, graphics state machine,
// parser, and canonical emitter (spec.md §4.3-§4.5, §4.7).
package gerber

import (
	"context"
	"regexp"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// statement is one entry of the ordered regex dispatch table (DESIGN NOTES
// §9 "regex dispatch table"): the first pattern to match a command's text
// wins, and its handler mutates the parser/graphics state and/or appends
// objects.
type statement struct {
	name    string
	re      *regexp.Regexp
	handle  func(p *Parser, g map[string]string) error
}

// Parser drives the graphics state machine from a Gerber token stream,
// building a File's object list, aperture table, and macro table.
type Parser struct {
	File     *File
	Filename string
	Sink     cam.Sink

	state         *GraphicsState
	attrs         *AttrDict
	region        *graphic.Region
	lastDCode     int // last explicit D-code operation (01/02/03), for inheritance
	dCodeIndex    map[int]graphic.ApertureRef
	generatorSeen map[string]bool
	fs            workingSettings
}

// NewParser returns a Parser ready to parse into a fresh File.
func NewParser(filename string, sink cam.Sink) *Parser {
	if sink == nil {
		sink = cam.NopSink
	}
	f := NewFile()
	return &Parser{
		File:          f,
		Filename:      filename,
		Sink:          sink,
		state:         NewGraphicsState(unit.Unit{}),
		attrs:         NewAttrDict(),
		dCodeIndex:    make(map[int]graphic.ApertureRef),
		generatorSeen: make(map[string]bool),
		lastDCode:     2,
		fs:            workingSettings{ZeroSuppression: cam.ZeroSuppressionUnknown, NumberFormat: cam.UnknownNumberFormat},
	}
}

// Parse tokenizes and interprets src, returning the parser's error on the
// first irrecoverable condition. ctx is checked between statements so a
// caller can cancel a very large parse; there is no partial-result
// invariant on cancellation (spec.md §5).
func (p *Parser) Parse(ctx context.Context, src string) (*File, error) {
	for _, tok := range Tokenize(src) {
		select {
		case <-ctx.Done():
			return p.File, ctx.Err()
		default:
		}

		if err := p.handleToken(tok); err != nil {
			if pe, ok := err.(*cam.ParseError); ok {
				if pe.File == "" {
					pe.File = p.Filename
				}
				if pe.Line == 0 {
					pe.Line = tok.Line
				}
				if pe.Text == "" {
					pe.Text = tok.Text
				}
				return p.File, pe
			}
			return p.File, err
		}
	}

	p.File.Settings = cam.FileSettings{
		Unit:            p.state.Unit,
		Notation:        settingsNotation(p.state.Notation),
		ZeroSuppression: p.fs.ZeroSuppression,
		NumberFormat:    p.fs.NumberFormat,
	}
	return p.File, nil
}

func settingsNotation(n AbsIncNotation) cam.Notation {
	if n == IncrementalNotation {
		return cam.Incremental
	}
	return cam.Absolute
}

// handleToken dispatches one token. A single extended-command token can
// chain several '*'-terminated statements inside one %...% block (e.g.
// "%FSLAX26Y26*MOMM*%"); every statement but AM (whose body uses internal
// '*' to separate primitives, not statements) is split and dispatched in
// order.
func (p *Parser) handleToken(tok Token) error {
	text := strings.TrimSpace(tok.Text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "AM") {
		return p.handleMacro(tok.Line, strings.TrimSuffix(text, "*"))
	}

	for _, stmt := range strings.Split(text, "*") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := p.dispatchStatement(tok.Line, stmt); err != nil {
			if pe, ok := err.(*cam.ParseError); ok && pe.Text == "" {
				pe.Text = stmt
			}
			return err
		}
	}
	return nil
}

func (p *Parser) dispatchStatement(line int, text string) error {
	if p.File.EOF {
		p.Sink("command found after M02", cam.SyntaxWarning)
	}

	for _, st := range dispatchTable {
		m := st.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		groups := namedGroups(st.re, m)
		if err := st.handle(p, groups); err != nil {
			return err
		}
		return nil
	}

	if strings.HasPrefix(text, "G04") || strings.HasPrefix(text, "G4") {
		p.handleComment(text)
		return nil
	}

	p.Sink("unrecognised statement, preserved as comment: "+text, cam.UnknownStatementWarning)
	p.File.Comments = append(p.File.Comments, text)
	return nil
}

func namedGroups(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

// workingSettings mirrors the parser's working FileSettings (kept separate
// from p.File.Settings, which is only finalised at the end of Parse per
// spec.md §3.1's invariant).
type workingSettings struct {
	ZeroSuppression cam.ZeroSuppression
	NumberFormat    cam.NumberFormat
}
