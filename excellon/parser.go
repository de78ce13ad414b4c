package excellon

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// Parser drives the Excellon program-state machine from a line stream,
// building a File's object list and tool table (spec.md §4.3, §4.8).
type Parser struct {
	File     *File
	Filename string
	Sink     cam.Sink

	// AllowIncludes gates the IF (include file) directive. Off by default:
	// honoring it means resolving a caller-supplied filesystem path, which
	// is a capability a library caller must opt into explicitly (DESIGN.md
	// Open Question decision).
	AllowIncludes bool
	Include       func(path string) (string, error)

	state        *ExcellonState
	routStart    [2]float64
	hasRoutDown  bool
	includeDepth int
}

// NewParser returns a Parser ready to parse into a fresh File. sidecar, if
// non-nil, seeds number-format hints before the body is read (spec.md §3.8);
// pass nil when no sidecar file was found.
func NewParser(filename string, sink cam.Sink, sidecar *Sidecar) *Parser {
	if sink == nil {
		sink = cam.NopSink
	}
	st := NewExcellonState()
	if sidecar != nil {
		sidecar.Apply(st)
	}
	return &Parser{
		File:     NewFile(),
		Filename: filename,
		Sink:     sink,
		state:    st,
	}
}

// Parse interprets src line by line.
func (p *Parser) Parse(ctx context.Context, src string) (*File, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for lineNo, raw := range lines {
		select {
		case <-ctx.Done():
			return p.File, ctx.Err()
		default:
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if err := p.handleLine(lineNo+1, line); err != nil {
			if pe, ok := err.(*cam.ParseError); ok {
				if pe.File == "" {
					pe.File = p.Filename
				}
				if pe.Line == 0 {
					pe.Line = lineNo + 1
				}
				if pe.Text == "" {
					pe.Text = line
				}
				return p.File, pe
			}
			return p.File, err
		}
	}

	p.File.Settings = cam.FileSettings{
		Unit:            p.state.Unit,
		Notation:        p.state.Notation,
		ZeroSuppression: p.state.ZeroSuppression,
		NumberFormat:    p.state.NumberFormat,
	}
	return p.File, nil
}

func (p *Parser) handleLine(lineNo int, line string) error {
	if p.state.Program == StateFinished {
		p.Sink("content found after M30/end of program", cam.SyntaxWarning)
	}

	if strings.HasPrefix(line, ";") {
		return p.handleComment(strings.TrimSpace(strings.TrimPrefix(line, ";")))
	}

	for _, st := range excellonDispatch {
		m := st.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		groups := namedGroupsEx(st.re, m)
		return st.handle(p, lineNo, groups)
	}

	p.Sink("unrecognised Excellon statement, ignored: "+line, cam.UnknownStatementWarning)
	return nil
}

func namedGroupsEx(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

// excellonDispatch is the ordered regex dispatch table, mirroring the
// Gerber parser's design (DESIGN NOTES §9).
var excellonDispatch = []struct {
	name   string
	re     *regexp.Regexp
	handle func(p *Parser, line int, g map[string]string) error
}{
	{"M48", regexp.MustCompile(`^M48$`), handleM48},
	{"M95", regexp.MustCompile(`^(?:M95|%)$`), handleM95},
	{"M30", regexp.MustCompile(`^M30.*$`), handleM30},
	{"M00", regexp.MustCompile(`^M00$`), handleExM00},
	{"M15", regexp.MustCompile(`^M15$`), handleM15},
	{"M16", regexp.MustCompile(`^(?:M16|M17)$`), handleM16},
	{"METRIC/INCH", regexp.MustCompile(`^(?P<unit>METRIC|INCH)(?:,(?P<opts>.*))?$`), handleUnitDecl},
	{"FMAT", regexp.MustCompile(`^FMAT,(?P<ver>\d)$`), handleFMAT},
	{"toolDef", regexp.MustCompile(`^T(?P<index>\d+)(?P<params>(?:[A-Z][\d.]+)+)$`), handleToolDef},
	{"toolSelect", regexp.MustCompile(`^T(?P<index>\d+)$`), handleToolSelect},
	{"repeat", regexp.MustCompile(`^R(?P<count>\d+)(?:X(?P<x>[+-]?[\d.]+))?(?:Y(?P<y>[+-]?[\d.]+))?$`), handleRepeat},
	{"include", regexp.MustCompile(`^IF,\s*"?(?P<path>[^"]+)"?$`), handleInclude},
	{"coord", regexp.MustCompile(`^(?:G(?P<g>0[0-5]))?(?:X(?P<x>[+-]?[\d.]+))?(?:Y(?P<y>[+-]?[\d.]+))?(?:A(?P<a>[\d.]+))?$`), handleExCoord},
}

// handleInclude implements the IF (include file) directive, gated behind
// Parser.AllowIncludes since honoring it means a library caller is willing
// to have the parser read an arbitrary filesystem path named by the input
// file itself (DESIGN.md Open Question decision). When allowed, the
// included file's lines are parsed in place, recursively. Absolute paths,
// paths containing "..", and nesting deeper than 16 levels are IncludeErrors.
func handleInclude(p *Parser, line int, g map[string]string) error {
	if !p.AllowIncludes {
		p.Sink("IF (include file) directive ignored; AllowIncludes is not set", cam.SyntaxWarning)
		return nil
	}
	if p.Include == nil {
		return &cam.ParseError{Kind: cam.IncludeError, Reason: "AllowIncludes is set but no Include function was provided"}
	}
	path := g["path"]
	if strings.Contains(path, "..") {
		return &cam.ParseError{Kind: cam.IncludeError, Reason: "include path must not contain '..': " + path}
	}
	if filepath.IsAbs(path) {
		return &cam.ParseError{Kind: cam.IncludeError, Reason: "include path must not be absolute: " + path}
	}
	if p.includeDepth >= 16 {
		return &cam.ParseError{Kind: cam.IncludeError, Reason: "include nesting too deep (recursive include?): " + path}
	}
	p.includeDepth++
	defer func() { p.includeDepth-- }()
	content, err := p.Include(path)
	if err != nil {
		return &cam.ParseError{Kind: cam.IncludeError, Reason: "include " + path + ": " + err.Error()}
	}
	for i, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		sub := strings.TrimSpace(raw)
		if sub == "" {
			continue
		}
		if err := p.handleLine(i+1, sub); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseCoord(s string) (float64, error) {
	v, err := cam.ParseCoordinate(s, p.state.NumberFormat, p.state.ZeroSuppression)
	if err != nil {
		return 0, &cam.ParseError{Kind: cam.NumberFormatUnknown, Reason: err.Error()}
	}
	return v, nil
}

func ptr(s string, p *Parser) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := p.parseCoord(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func handleM48(p *Parser, line int, g map[string]string) error {
	p.state.Program = StateHeader
	return nil
}

func handleM95(p *Parser, line int, g map[string]string) error {
	if p.state.Program == StateHeader {
		p.state.Program = StateDrilling
	}
	return nil
}

func handleM30(p *Parser, line int, g map[string]string) error {
	p.state.Program = StateFinished
	return nil
}

func handleExM00(p *Parser, line int, g map[string]string) error {
	p.Sink("M00 (program stop) is deprecated; tool selection is left unchanged", cam.DeprecationWarning)
	return nil
}

func handleM15(p *Parser, line int, g map[string]string) error {
	p.state.Program = StateRouting
	p.state.Rout = RoutDown
	p.routStart = [2]float64{p.state.X, p.state.Y}
	p.hasRoutDown = true
	return nil
}

func handleM16(p *Parser, line int, g map[string]string) error {
	p.state.Rout = RoutUp
	p.hasRoutDown = false
	p.state.Program = StateDrilling
	return nil
}

func handleUnitDecl(p *Parser, line int, g map[string]string) error {
	if g["unit"] == "METRIC" {
		p.state.Unit = unit.MM
	} else {
		p.state.Unit = unit.Inch
	}

	for _, opt := range strings.Split(g["opts"], ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "LZ":
			p.state.ZeroSuppression = cam.Trailing // leading zeros KEPT means trailing digits are what's dropped
		case opt == "TZ":
			p.state.ZeroSuppression = cam.Leading
		case len(opt) >= 3 && strings.Contains(opt, "."):
			intDigits := strings.Index(opt, ".")
			fracDigits := len(opt) - intDigits - 1
			p.state.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}
		}
	}
	return nil
}

func handleFMAT(p *Parser, line int, g map[string]string) error {
	return nil // format version declaration, informational only
}

// toolDefParamRe splits a standard tool definition's letter-coded parameter
// run ("C0.300F100S1000") into individual letter+value tokens, mirroring the
// original parser's `re.findall('[BCFHSTZ][.0-9]+', ...)` approach: letters
// other than C/F/S/Z are recognised but discarded (spec.md §3.5/§4.6).
var toolDefParamRe = regexp.MustCompile(`[A-Z][\d.]+`)

func handleToolDef(p *Parser, line int, g map[string]string) error {
	index, _ := strconv.Atoi(g["index"])
	var dia, feed, speed, depthOffset float64
	for _, tok := range toolDefParamRe.FindAllString(g["params"], -1) {
		v, err := strconv.ParseFloat(tok[1:], 64)
		if err != nil {
			continue
		}
		switch tok[0] {
		case 'C':
			dia = v
		case 'F':
			feed = v
		case 'S':
			speed = v
		case 'Z':
			depthOffset = v
		}
	}
	p.File.Tools.Define(index, Tool{Diameter: dia, Feed: feed, Speed: speed, DepthOffset: depthOffset}, p.Sink)
	if p.File.Tools.Count() > 99 {
		p.Sink("more than 99 tools defined; exceeds the traditional dialect ceiling", cam.ResourceWarning)
	}
	return nil
}

func handleToolSelect(p *Parser, line int, g map[string]string) error {
	index, _ := strconv.Atoi(g["index"])
	if index == 0 {
		// T0 cancels tool selection in several dialects rather than
		// selecting an actual tool.
		p.state.CurrentTool = -1
		return nil
	}
	if _, ok := p.File.Tools.Lookup(index); !ok {
		p.Sink("tool T"+g["index"]+" selected before definition", cam.SyntaxWarning)
	}
	p.state.CurrentTool = index
	return nil
}

func handleRepeat(p *Parser, line int, g map[string]string) error {
	count, _ := strconv.Atoi(g["count"])
	dx, err := ptr(g["x"], p)
	if err != nil {
		return err
	}
	dy, err := ptr(g["y"], p)
	if err != nil {
		return err
	}
	stepX, stepY := deref(dx), deref(dy)

	for i := 0; i < count; i++ {
		nx, ny := p.state.X+stepX, p.state.Y+stepY
		p.state.X, p.state.Y = nx, ny
		p.emitDrill()
	}
	return nil
}

func handleExCoord(p *Parser, line int, g map[string]string) error {
	xp, err := ptr(g["x"], p)
	if err != nil {
		return err
	}
	yp, err := ptr(g["y"], p)
	if err != nil {
		return err
	}

	gCode := g["g"]
	switch gCode {
	case "00":
		// G00 is a rapid move: it enters rout mode with the tool up and
		// never cuts.
		nx, ny := p.state.updatePoint(xp, yp)
		p.state.Program = StateRouting
		p.state.Rout = RoutUp
		p.hasRoutDown = false
		p.state.X, p.state.Y = nx, ny
		p.state.HasCurrentPoint = true
		return nil
	case "01":
		return p.handleRoutMove(xp, yp)
	case "02", "03":
		return p.handleRoutArc(xp, yp, g["a"], gCode == "02")
	case "05":
		p.state.Program = StateDrilling
		if xp == nil && yp == nil {
			return nil
		}
		return p.handlePlainCoord(xp, yp)
	default:
		return p.handlePlainCoord(xp, yp)
	}
}

// handlePlainCoord is a bare X/Y with no G-code: a drill hit in drilling
// mode (the Excellon default body mode).
func (p *Parser) handlePlainCoord(xp, yp *float64) error {
	nx, ny := p.state.updatePoint(xp, yp)
	p.state.X, p.state.Y = nx, ny
	p.state.HasCurrentPoint = true
	if p.state.Program != StateRouting {
		p.emitDrill()
	}
	return nil
}

func (p *Parser) handleRoutMove(xp, yp *float64) error {
	nx, ny := p.state.updatePoint(xp, yp)
	if p.state.Program == StateRouting && p.state.Rout == RoutDown {
		p.emitSlot(p.state.X, p.state.Y, nx, ny)
	}
	p.state.X, p.state.Y = nx, ny
	p.state.HasCurrentPoint = true
	return nil
}

func (p *Parser) handleRoutArc(xp, yp *float64, aStr string, clockwise bool) error {
	nx, ny := p.state.updatePoint(xp, yp)
	if p.state.Program == StateRouting && p.state.Rout == RoutDown && aStr != "" {
		r, err := p.parseCoord(aStr)
		if err != nil {
			return err
		}
		cx, cy := resolveArcCenter(p.state.X, p.state.Y, nx, ny, r, clockwise)
		p.emitArc(p.state.X, p.state.Y, nx, ny, cx, cy, clockwise)
	}
	p.state.X, p.state.Y = nx, ny
	p.state.HasCurrentPoint = true
	return nil
}

func (p *Parser) emitDrill() {
	var diameter float64
	if t, ok := p.File.Tools.Lookup(p.state.CurrentTool); ok {
		diameter = t.Diameter
	}
	obj := &graphic.Drill{
		Common:   graphic.Common{PolarityDark: true, Unit: p.state.Unit},
		X:        p.state.X,
		Y:        p.state.Y,
		Diameter: diameter,
	}
	p.addObject(obj)
}

func (p *Parser) emitSlot(x1, y1, x2, y2 float64) {
	var width float64
	if t, ok := p.File.Tools.Lookup(p.state.CurrentTool); ok {
		width = t.Diameter
	}
	obj := &graphic.Slot{
		Common: graphic.Common{PolarityDark: true, Unit: p.state.Unit},
		X1:     x1, Y1: y1, X2: x2, Y2: y2,
		Width: width,
	}
	p.addObject(obj)
}

func (p *Parser) emitArc(x1, y1, x2, y2, cx, cy float64, clockwise bool) {
	obj := &graphic.Arc{
		Common:    graphic.Common{PolarityDark: true, Unit: p.state.Unit},
		X1:        x1, Y1: y1, X2: x2, Y2: y2,
		CX:        cx - x1,
		CY:        cy - y1,
		Clockwise: clockwise,
		Aperture:  graphic.ApertureRef(p.state.CurrentTool),
	}
	p.addObject(obj)
}

func (p *Parser) addObject(obj graphic.Object) {
	idx := len(p.File.Objects)
	p.File.Objects = append(p.File.Objects, obj)
	if p.state.CurrentTool >= 0 {
		if p.File.ObjectTool == nil {
			p.File.ObjectTool = make(map[int]graphic.ApertureRef)
		}
		p.File.ObjectTool[idx] = graphic.ApertureRef(p.state.CurrentTool)
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// handleComment dispatches a comment's body (leading ";" already stripped) to
// the dialect-specific parsers that hide tool definitions and number-format
// announcements inside ordinary comments (spec.md §4.6): Allegro and EasyEDA
// tool tables, and Siemens/Altium/KiCad format declarations. These run
// before the generic hint sniff and catch-all comment recording, mirroring
// the original parser's first-match-wins regex dispatch (excellon.py's
// RegexMatcher).
func (p *Parser) handleComment(comment string) error {
	if matched, err := p.handleAllegroTooldef(comment); matched {
		return err
	}
	if p.handleEasyEDATooldef(comment) {
		return nil
	}
	if p.handleSiemensFormat(comment) {
		return nil
	}
	if p.handleAltiumFileFormat(comment) {
		return nil
	}
	if p.handleKicadFormat(comment) {
		return nil
	}

	p.File.Comments = append(p.File.Comments, comment)
	for hint, re := range dialectHints {
		if re.MatchString(comment) {
			p.noteHint(hint)
		}
	}
	return nil
}

var dialectHints = map[string]*regexp.Regexp{
	"allegro":    regexp.MustCompile(`(?i)allegro`),
	"siemens":    regexp.MustCompile(`(?i)siemens`),
	"easyeda":    regexp.MustCompile(`(?i)easyeda`),
	"kicad":      regexp.MustCompile(`(?i)kicad`),
	"altium":     regexp.MustCompile(`(?i)altium`),
	"target3001": regexp.MustCompile(`(?i)target.?3001`),
	"geda":       regexp.MustCompile(`(?i)\bgeda\b|pcb-rnd`),
}

// allegroTooldefRe matches Allegro's comment-embedded tool table entry:
// ";T<i> Holesize <j>. = <d> Tolerance = +t/-t (PLATED|NON_PLATED|OPTIONAL)
// (MILS|MM) Quantity = <n>" (grounded on excellon.py's
// parse_allegro_tooldef). The index is repeated; the two copies must agree.
var allegroTooldefRe = regexp.MustCompile(`^T(?P<index1>\d+) Holesize (?P<index2>\d+)\. = (?P<diameter>[\d/.]+) Tolerance = \+[\d/.]+/-[\d/.]+ (?P<plated>PLATED|NON_PLATED|OPTIONAL) (?P<unit>MILS|MM)`)

func (p *Parser) handleAllegroTooldef(comment string) (matched bool, err error) {
	m := allegroTooldefRe.FindStringSubmatch(comment)
	if m == nil {
		return false, nil
	}
	g := namedGroupsEx(allegroTooldefRe, m)

	index1, _ := strconv.Atoi(g["index1"])
	index2, _ := strconv.Atoi(g["index2"])
	if index1 != index2 {
		return true, &cam.ParseError{Kind: cam.SyntaxError, Reason: "Allegro tool definition has mismatched tool indices"}
	}

	dia, _ := strconv.ParseFloat(g["diameter"], 64)
	toolUnit := unit.MM
	if g["unit"] == "MILS" {
		dia /= 1000
		toolUnit = unit.Inch
	}
	if p.state.Unit.Known() && toolUnit != p.state.Unit {
		p.Sink("Allegro tool definition unit does not match the file's declared unit", cam.SyntaxWarning)
		dia = p.state.Unit.Convert(dia, toolUnit)
	}

	// "Optionally" plated holes are mapped to plated, for API simplicity.
	plating := NonPlated
	if g["plated"] == "PLATED" || g["plated"] == "OPTIONAL" {
		plating = Plated
	}

	p.File.Tools.Define(index1, Tool{Diameter: dia, Plating: plating}, p.Sink)
	p.state.Program = StateHeader
	p.noteHint("allegro")
	return true, nil
}

// easyedaTooldefRe matches EasyEDA's comment-embedded tool table entry:
// ";Holesize <i> = <d> (INCH|MM)" (grounded on excellon.py's
// parse_easyeda_tooldef).
var easyedaTooldefRe = regexp.MustCompile(`^Holesize (?P<index>\d+) = (?P<diameter>[.\d]+) (?P<unit>INCH|inch|METRIC|MM|mm)$`)

func (p *Parser) handleEasyEDATooldef(comment string) bool {
	m := easyedaTooldefRe.FindStringSubmatch(comment)
	if m == nil {
		return false
	}
	g := namedGroupsEx(easyedaTooldefRe, m)

	index, _ := strconv.Atoi(g["index"])
	dia, _ := strconv.ParseFloat(g["diameter"], 64)
	toolUnit := unit.MM
	if strings.EqualFold(g["unit"], "inch") {
		toolUnit = unit.Inch
	}
	if p.state.Unit.Known() && toolUnit != p.state.Unit {
		dia = p.state.Unit.Convert(dia, toolUnit)
	}

	p.File.Tools.Define(index, Tool{Diameter: dia}, p.Sink)
	p.noteHint("easyeda")
	return true
}

// siemensFormatRe matches Siemens's "; Format : <i>.<f> / Absolute|Incremental
// / Inch|MM / Leading|Trailing" comment (grounded on excellon.py's
// parse_siemens_format). Siemens inverts the ordinary meaning of the
// leading/trailing word: a file saying "Leading" behaves like trailing zero
// suppression elsewhere (e.g. "INCH,TZ").
var siemensFormatRe = regexp.MustCompile(`^Format\s*:\s*(?P<int>\d+)\.(?P<frac>\d+)\s*/\s*(?P<notation>Absolute|Incremental)\s*/\s*(?P<unit>Inch|MM)\s*/\s*(?P<zero>Leading|Trailing)`)

func (p *Parser) handleSiemensFormat(comment string) bool {
	m := siemensFormatRe.FindStringSubmatch(comment)
	if m == nil {
		return false
	}
	g := namedGroupsEx(siemensFormatRe, m)

	intDigits, _ := strconv.Atoi(g["int"])
	fracDigits, _ := strconv.Atoi(g["frac"])
	p.state.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}

	if g["notation"] == "Incremental" {
		p.state.Notation = cam.Incremental
	} else {
		p.state.Notation = cam.Absolute
	}
	if g["unit"] == "Inch" {
		p.state.Unit = unit.Inch
	} else {
		p.state.Unit = unit.MM
	}
	switch g["zero"] {
	case "Leading":
		p.state.ZeroSuppression = cam.Trailing
	case "Trailing":
		p.state.ZeroSuppression = cam.Leading
	}

	p.noteHint("siemens")
	return true
}

// altiumFileFormatRe matches Altium/EasyEDA's ";FILE_FORMAT=<i>:<f>" number
// format comment (grounded on excellon.py's
// parse_altium_easyeda_number_format_comment).
var altiumFileFormatRe = regexp.MustCompile(`^FILE_FORMAT=(?P<int>\d+):(?P<frac>\d+)`)

func (p *Parser) handleAltiumFileFormat(comment string) bool {
	m := altiumFileFormatRe.FindStringSubmatch(comment)
	if m == nil {
		return false
	}
	g := namedGroupsEx(altiumFileFormatRe, m)

	intDigits, _ := strconv.Atoi(g["int"])
	fracDigits, _ := strconv.Atoi(g["frac"])
	p.state.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}
	p.noteHint("altium")
	return true
}

// kicadFormatRe matches KiCad's ";FORMAT={<i>:<f> / notation / unit /
// decimal}" comment (grounded on excellon.py's
// parse_kicad_number_format_comment).
var kicadFormatRe = regexp.MustCompile(`^FORMAT=\{(?P<int>[-\d]+):(?P<frac>[-\d]+)\s*/\s*(?P<notation>[^/]+?)\s*/\s*(?P<unit>[^/]+?)\s*/\s*decimal\}`)

func (p *Parser) handleKicadFormat(comment string) bool {
	m := kicadFormatRe.FindStringSubmatch(comment)
	if m == nil {
		return false
	}
	g := namedGroupsEx(kicadFormatRe, m)

	if intDigits, err1 := strconv.Atoi(g["int"]); err1 == nil {
		if fracDigits, err2 := strconv.Atoi(g["frac"]); err2 == nil {
			p.state.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}
		}
	}
	switch strings.ToLower(g["notation"]) {
	case "absolute":
		p.state.Notation = cam.Absolute
	case "incremental":
		p.state.Notation = cam.Incremental
	}
	if u, ok := unit.FromName(g["unit"]); ok {
		p.state.Unit = u
	}
	p.noteHint("kicad")
	return true
}

func (p *Parser) noteHint(hint string) {
	for _, h := range p.File.GeneratorHints {
		if h == hint {
			return
		}
	}
	p.File.GeneratorHints = append(p.File.GeneratorHints, hint)
}
