package gerber

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// dispatchTable is the ordered regex->handler table statements are matched
// against (DESIGN NOTES §9). Order matters: the first match wins.
var dispatchTable = []statement{
	{"FS", regexp.MustCompile(`^FS(?P<zero>[LTD]?)(?P<notation>[AI])X(?P<xi>\d)(?P<xf>\d)Y(?P<yi>\d)(?P<yf>\d)$`), handleFS},
	{"MO", regexp.MustCompile(`^MO(?P<unit>MM|IN)$`), handleMO},
	{"IP", regexp.MustCompile(`^IP(?P<pol>POS|NEG)$`), handleIP},
	{"IR", regexp.MustCompile(`^IR(?P<deg>0|90|180|270)$`), handleIR},
	{"MI", regexp.MustCompile(`^MI(?:A(?P<a>0|1))?(?:B(?P<b>0|1))?$`), handleMI},
	{"SF", regexp.MustCompile(`^SFA(?P<a>[\d.]+)B(?P<b>[\d.]+)$`), handleSF},
	{"OF", regexp.MustCompile(`^OF(?:A(?P<a>[+-]?[\d.]+))?(?:B(?P<b>[+-]?[\d.]+))?$`), handleOF},
	{"IN", regexp.MustCompile(`^IN(?P<name>.+)$`), handleIN},
	{"LN", regexp.MustCompile(`^LN(?P<name>.+)$`), handleLN},
	{"AS", regexp.MustCompile(`^AS(?P<a>AXBY|AYBX)$`), handleAS},
	{"AD", regexp.MustCompile(`^ADD(?P<code>\d+)(?P<shape>[A-Za-z_$][A-Za-z0-9_.$-]*)(?:,(?P<mods>.*))?$`), handleAD},
	{"TF", regexp.MustCompile(`^TF\.?(?P<name>[A-Za-z0-9_]+)(?:,(?P<values>.*))?$`), handleTF},
	{"TA", regexp.MustCompile(`^TA\.?(?P<name>[A-Za-z0-9_]+)(?:,(?P<values>.*))?$`), handleTA},
	{"TO", regexp.MustCompile(`^TO\.?(?P<name>[A-Za-z0-9_]+)(?:,(?P<values>.*))?$`), handleTO},
	{"TD", regexp.MustCompile(`^TD\.?(?P<name>[A-Za-z0-9_]+)?$`), handleTD},
	{"LP", regexp.MustCompile(`^LP(?P<pol>D|C)$`), handleLP},
	{"LM", regexp.MustCompile(`^LM(?P<mode>N|X|Y|XY)$`), handleLM},
	{"LR", regexp.MustCompile(`^LR(?P<deg>[+-]?[\d.]+)$`), handleLR},
	{"LS", regexp.MustCompile(`^LS(?P<scale>[\d.]+)$`), handleLS},
	{"G36", regexp.MustCompile(`^G36$`), handleG36},
	{"G37", regexp.MustCompile(`^G37$`), handleG37},
	{"G74", regexp.MustCompile(`^G74$`), handleG74},
	{"G75", regexp.MustCompile(`^G75$`), handleG75},
	{"G90", regexp.MustCompile(`^G90$`), handleG90},
	{"G91", regexp.MustCompile(`^G91$`), handleG91},
	{"G54Dselect", regexp.MustCompile(`^G54D(?P<code>[1-9]\d*)$`), handleG54Select},
	{"G55/G70/G71", regexp.MustCompile(`^G(?:55|70|71)$`), handleLegacyG},
	{"Dselect", regexp.MustCompile(`^D(?P<code>[1-9]\d+)$`), handleDSelect},
	{"M00/M01", regexp.MustCompile(`^M0(?P<code>[01])$`), handleOptionalStop},
	{"M02", regexp.MustCompile(`^M0?2$`), handleM02},
	{"coord", regexp.MustCompile(`^(?:G0?(?P<mode>[123]))?(?:X(?P<x>[+-]?\d*\.?\d*))?(?:Y(?P<y>[+-]?\d*\.?\d*))?(?:I(?P<i>[+-]?\d*\.?\d*))?(?:J(?P<j>[+-]?\d*\.?\d*))?(?:D0?(?P<d>[123]))?$`), handleCoord},
}

// --- FS / MO / IP / deprecated transforms ---

func handleFS(p *Parser, g map[string]string) error {
	xi, _ := strconv.Atoi(g["xi"])
	xf, _ := strconv.Atoi(g["xf"])
	yi, _ := strconv.Atoi(g["yi"])
	yf, _ := strconv.Atoi(g["yf"])
	if xi != yi || xf != yf {
		return &cam.ParseError{Kind: cam.FormatMismatch, Reason: "FS specifies unequal X/Y digit widths"}
	}
	p.fs.NumberFormat = cam.NumberFormat{Integer: xi, Fractional: xf}

	switch g["zero"] {
	case "L":
		p.fs.ZeroSuppression = cam.Leading
	case "T":
		p.fs.ZeroSuppression = cam.Trailing
	case "D":
		p.fs.ZeroSuppression = cam.NoSuppression
	default:
		p.Sink("FS omits the zero-suppression character; assuming leading-zero suppression", cam.SyntaxWarning)
		p.fs.ZeroSuppression = cam.Leading
	}

	if g["notation"] == "I" {
		p.state.Notation = IncrementalNotation
	} else {
		p.state.Notation = AbsoluteNotation
	}
	return nil
}

func handleMO(p *Parser, g map[string]string) error {
	if g["unit"] == "IN" {
		p.state.Unit = unit.Inch
	} else {
		p.state.Unit = unit.MM
	}
	return nil
}

func handleIP(p *Parser, g map[string]string) error {
	p.Sink("IP is deprecated", cam.DeprecationWarning)
	p.state.ImagePolarityNegative = g["pol"] == "NEG"
	return nil
}

func handleIR(p *Parser, g map[string]string) error {
	p.Sink("IR is deprecated", cam.DeprecationWarning)
	deg, _ := strconv.Atoi(g["deg"])
	p.state.SetImageRotation(deg)
	return nil
}

func handleMI(p *Parser, g map[string]string) error {
	p.Sink("MI is deprecated", cam.DeprecationWarning)
	x := g["a"] == "1"
	y := g["b"] == "1"
	p.state.SetImageMirror(x, y)
	return nil
}

func handleSF(p *Parser, g map[string]string) error {
	p.Sink("SF is deprecated", cam.DeprecationWarning)
	a, _ := strconv.ParseFloat(g["a"], 64)
	b, _ := strconv.ParseFloat(g["b"], 64)
	p.state.SetImageScale(a, b)
	return nil
}

func handleOF(p *Parser, g map[string]string) error {
	p.Sink("OF is deprecated", cam.DeprecationWarning)
	var a, b float64
	if v := g["a"]; v != "" {
		a, _ = strconv.ParseFloat(v, 64)
	}
	if v := g["b"]; v != "" {
		b, _ = strconv.ParseFloat(v, 64)
	}
	p.state.SetImageOffset(a, b)
	return nil
}

func handleIN(p *Parser, g map[string]string) error {
	p.Sink("IN (image name) is deprecated", cam.DeprecationWarning)
	return nil
}

func handleLN(p *Parser, g map[string]string) error {
	p.Sink("LN (layer name) is deprecated", cam.DeprecationWarning)
	return nil
}

func handleAS(p *Parser, g map[string]string) error {
	p.Sink("AS (axis select) is deprecated", cam.DeprecationWarning)
	return nil
}

// --- Aperture / macro definitions ---

func handleAD(p *Parser, g map[string]string) error {
	code, _ := strconv.Atoi(g["code"])
	shape := g["shape"]
	var mods []float64
	if v := g["mods"]; v != "" {
		for _, part := range strings.Split(v, "X") {
			f, _ := strconv.ParseFloat(part, 64)
			mods = append(mods, f)
		}
	}

	u := p.state.Unit
	var ap aperture.Aperture
	switch shape {
	case "C":
		hole := 0.0
		if len(mods) > 1 {
			hole = mods[1]
		}
		ap = aperture.NewCircle(u, at(mods, 0), hole)
	case "R":
		hole := 0.0
		if len(mods) > 2 {
			hole = mods[2]
		}
		ap = aperture.NewRectangle(u, at(mods, 0), at(mods, 1), hole)
	case "O":
		hole := 0.0
		if len(mods) > 2 {
			hole = mods[2]
		}
		ap = aperture.NewObround(u, at(mods, 0), at(mods, 1), hole)
	case "P":
		vertices := 3
		if len(mods) > 1 {
			vertices = int(mods[1])
		}
		rotation := 0.0
		if len(mods) > 2 {
			rotation = mods[2]
		}
		hole := 0.0
		if len(mods) > 3 {
			hole = mods[3]
		}
		ap = aperture.NewPolygon(u, at(mods, 0), vertices, rotation, hole)
	default:
		ap = aperture.NewMacroInstance(u, shape, mods)
	}
	for k, v := range p.attrs.Snapshot(ApertureScope) {
		ap.Attrs()[k] = v
	}

	ref := p.File.AddAperture(ap)
	p.dCodeIndex[code] = ref
	return nil
}

func at(mods []float64, i int) float64 {
	if i < len(mods) {
		return mods[i]
	}
	return 0
}

func (p *Parser) handleMacro(line int, text string) error {
	// text looks like "AMName*1,1,$1,0,0*21,1,$1,$2,0,0,0*"
	rest := strings.TrimPrefix(text, "AM")
	parts := strings.Split(rest, "*")
	if len(parts) == 0 || parts[0] == "" {
		return &cam.ParseError{Kind: cam.SyntaxError, Line: line, Text: text, Reason: "empty AM statement"}
	}
	name := parts[0]

	var primitives []aperture.Primitive
	for _, body := range parts[1:] {
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		fields := strings.Split(body, ",")
		code, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			p.Sink("unrecognised macro primitive, skipped: "+body, cam.SyntaxWarning)
			continue
		}
		primitives = append(primitives, aperture.Primitive{Code: code, Modifiers: fields[1:]})
	}

	p.File.Macros.Define(name, aperture.Macro{Primitives: primitives})
	return nil
}

// --- Attributes (TF/TA/TO/TD) ---

func splitValues(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func handleTF(p *Parser, g map[string]string) error {
	p.attrs.Set(FileScope, g["name"], splitValues(g["values"]))
	p.File.FileAttributes[g["name"]] = splitValues(g["values"])
	return nil
}

func handleTA(p *Parser, g map[string]string) error {
	p.attrs.Set(ApertureScope, g["name"], splitValues(g["values"]))
	return nil
}

func handleTO(p *Parser, g map[string]string) error {
	p.attrs.Set(ObjectScope, g["name"], splitValues(g["values"]))
	return nil
}

func handleTD(p *Parser, g map[string]string) error {
	return p.attrs.Clear(g["name"], p.Sink)
}

// --- Polarity / mirror / rotation / scale (LP/LM/LR/LS) ---

func handleLP(p *Parser, g map[string]string) error {
	p.state.SetPolarity(g["pol"] == "D")
	return nil
}

func handleLM(p *Parser, g map[string]string) error {
	switch g["mode"] {
	case "X":
		p.state.ApertureMirror = ImageMirror{X: true}
	case "Y":
		p.state.ApertureMirror = ImageMirror{Y: true}
	case "XY":
		p.state.ApertureMirror = ImageMirror{X: true, Y: true}
	default:
		p.state.ApertureMirror = ImageMirror{}
	}
	return nil
}

func handleLR(p *Parser, g map[string]string) error {
	deg, _ := strconv.ParseFloat(g["deg"], 64)
	p.state.ApertureRotate = deg
	return nil
}

func handleLS(p *Parser, g map[string]string) error {
	scale, _ := strconv.ParseFloat(g["scale"], 64)
	p.state.ApertureScale = scale
	return nil
}

// --- Region start/end, quadrant mode, notation ---

func handleG36(p *Parser, g map[string]string) error {
	p.region = &graphic.Region{Common: graphic.Common{PolarityDark: p.state.PolarityDark, Unit: p.state.Unit}}
	return nil
}

func handleG37(p *Parser, g map[string]string) error {
	if p.region == nil {
		return &cam.ParseError{Kind: cam.RegionMisuse, Reason: "G37 outside of a region"}
	}
	p.sealRegion()
	p.region = nil
	return nil
}

func (p *Parser) sealRegion() {
	if p.region != nil && len(p.region.Outline) > 0 {
		for k, v := range p.attrs.Snapshot(ObjectScope) {
			p.region.Attrs()[k] = v
		}
		p.File.Objects = append(p.File.Objects, p.region)
	}
}

func handleG74(p *Parser, g map[string]string) error {
	p.state.MultiQuadrant = false
	return nil
}

func handleG75(p *Parser, g map[string]string) error {
	p.state.MultiQuadrant = true
	return nil
}

func handleG90(p *Parser, g map[string]string) error {
	p.state.Notation = AbsoluteNotation
	return nil
}

func handleG91(p *Parser, g map[string]string) error {
	p.state.Notation = IncrementalNotation
	return nil
}

func handleLegacyG(p *Parser, g map[string]string) error {
	p.Sink("legacy/no-op G-code ignored", cam.DeprecationWarning)
	return nil
}

// --- D-code aperture selection ---

func handleDSelect(p *Parser, g map[string]string) error {
	code, _ := strconv.Atoi(g["code"])
	ref, ok := p.dCodeIndex[code]
	if !ok {
		return &cam.ParseError{Kind: cam.UndefinedAperture, Reason: "D" + g["code"] + " selected before definition"}
	}
	p.state.CurrentAperture = ref
	return nil
}

// handleG54Select implements the deprecated "G54Dnn" aperture-select prefix
// (spec.md §4.5 deprecated statements): still selects the aperture, unlike
// the other G54/G55/G70/G71 no-ops.
func handleG54Select(p *Parser, g map[string]string) error {
	p.Sink("G54 aperture-select prefix is deprecated", cam.DeprecationWarning)
	return handleDSelect(p, g)
}

// --- M-codes ---

func handleOptionalStop(p *Parser, g map[string]string) error {
	return nil // M00/M01: optional stop/program stop, no effect on the object model
}

func handleM02(p *Parser, g map[string]string) error {
	p.File.EOF = true
	return nil
}

// --- Comments ---

var generatorHintPatterns = map[string]*regexp.Regexp{
	"allegro": regexp.MustCompile(`(?i)allegro`),
	"siemens": regexp.MustCompile(`(?i)siemens`),
	"easyeda": regexp.MustCompile(`(?i)easyeda`),
	"kicad":   regexp.MustCompile(`(?i)kicad`),
	"altium":  regexp.MustCompile(`(?i)altium`),
	"eagle":   regexp.MustCompile(`(?i)eagle`),
}

var layerPurposeHints = map[string]*regexp.Regexp{
	"top mask":    regexp.MustCompile(`(?i)soldermask.?top`),
	"bottom mask": regexp.MustCompile(`(?i)soldermask.?bot`),
	"top silk":    regexp.MustCompile(`(?i)silkscreen.?top`),
	"bottom silk": regexp.MustCompile(`(?i)silkscreen.?bot`),
}

// handleComment records a G04 comment verbatim and sniffs it for generator
// and layer-purpose hints (spec.md §3.7), surfaced through the same
// GeneratorHints list since both are informational, deduplicated provenance.
func (p *Parser) handleComment(text string) {
	comment := strings.TrimPrefix(strings.TrimPrefix(text, "G04"), "G4")
	comment = strings.TrimSpace(comment)
	p.File.Comments = append(p.File.Comments, comment)

	p.noteHint(generatorHintPatterns, comment)
	p.noteHint(layerPurposeHints, comment)
}

func (p *Parser) noteHint(patterns map[string]*regexp.Regexp, comment string) {
	for hint, re := range patterns {
		if re.MatchString(comment) && !p.generatorSeen[hint] {
			p.generatorSeen[hint] = true
			p.File.GeneratorHints = append(p.File.GeneratorHints, hint)
		}
	}
}

// --- Coordinate / interpolation / flash ---

func (p *Parser) parseCoord(s string) (float64, error) {
	v, err := cam.ParseCoordinate(s, p.fs.NumberFormat, p.fs.ZeroSuppression)
	if err != nil {
		if errors.Is(err, cam.ErrNumberFormatUnknown) {
			return 0, &cam.ParseError{Kind: cam.NumberFormatUnknown, Reason: err.Error()}
		}
		return 0, &cam.ParseError{Kind: cam.SyntaxError, Reason: err.Error()}
	}
	return v, nil
}

func handleCoord(p *Parser, g map[string]string) error {
	if mode := g["mode"]; mode != "" {
		switch mode {
		case "1":
			p.state.Interpolation = Linear
		case "2":
			p.state.Interpolation = ClockwiseCircular
		case "3":
			p.state.Interpolation = CounterClockwiseCircular
		}
	}

	xp, err := p.coordPtr(g["x"])
	if err != nil {
		return err
	}
	yp, err := p.coordPtr(g["y"])
	if err != nil {
		return err
	}
	ip, err := p.coordPtr(g["i"])
	if err != nil {
		return err
	}
	jp, err := p.coordPtr(g["j"])
	if err != nil {
		return err
	}

	op := 0
	if d := g["d"]; d != "" {
		op, _ = strconv.Atoi(d)
	} else if xp != nil || yp != nil || ip != nil || jp != nil {
		op = p.lastDCode
		p.Sink("operation code omitted; inheriting previous D-code", cam.SyntaxWarning)
	} else {
		return nil // pure mode-setting statement, e.g. bare "G01"
	}
	p.lastDCode = op

	switch op {
	case 1:
		return p.handleInterpolate(xp, yp, ip, jp)
	case 2:
		return p.handleMove(xp, yp)
	case 3:
		return p.handleFlash(xp, yp)
	}
	return nil
}

func (p *Parser) coordPtr(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := p.parseCoord(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *Parser) handleInterpolate(xp, yp, ip, jp *float64) error {
	if p.region != nil {
		return p.regionInterpolate(xp, yp, ip, jp)
	}
	obj, err := p.state.Interpolate(xp, yp, ip, jp, p.Sink)
	if err != nil {
		if errors.Is(err, ErrBadOperands) {
			return &cam.ParseError{Kind: cam.SyntaxError, Reason: "D01 in linear mode with I/J operands"}
		}
		return err
	}
	if obj != nil {
		for k, v := range p.attrs.Snapshot(ObjectScope) {
			obj.Attrs()[k] = v
		}
		p.File.Objects = append(p.File.Objects, obj)
	}
	return nil
}

func (p *Parser) handleMove(xp, yp *float64) error {
	if p.region != nil {
		return p.regionMove(xp, yp)
	}
	p.state.Move(xp, yp)
	return nil
}

func (p *Parser) handleFlash(xp, yp *float64) error {
	if p.region != nil {
		return &cam.ParseError{Kind: cam.RegionMisuse, Reason: "D03 is not allowed inside a region"}
	}
	obj := p.state.Flash(xp, yp)
	for k, v := range p.attrs.Snapshot(ObjectScope) {
		obj.Attrs()[k] = v
	}
	p.File.Objects = append(p.File.Objects, obj)
	return nil
}

// regionMove starts a new outline within the same Region "sibling list" by
// sealing and emitting the current one (DESIGN note: one Region object per
// contiguous outline).
func (p *Parser) regionMove(xp, yp *float64) error {
	p.sealRegion()
	nx, ny := p.state.updatePoint(xp, yp)
	p.state.X, p.state.Y = nx, ny
	p.state.HasCurrentPoint = true

	mx, my := p.state.mapCoord(nx, ny, false)
	p.region = &graphic.Region{Common: graphic.Common{PolarityDark: p.state.PolarityDark, Unit: p.state.Unit}}
	p.region.Outline = append(p.region.Outline, [2]float64{mx, my})
	p.region.ArcData = append(p.region.ArcData, graphic.ArcSegment{Straight: true})
	return nil
}

func (p *Parser) regionInterpolate(xp, yp, ip, jp *float64) error {
	if !p.state.HasCurrentPoint {
		p.Sink("region segment with no current point; assuming (0,0)", cam.SyntaxWarning)
		p.state.X, p.state.Y = 0, 0
		p.state.HasCurrentPoint = true
	}

	x1, y1 := p.state.X, p.state.Y
	nx, ny := p.state.updatePoint(xp, yp)
	p.state.X, p.state.Y = nx, ny

	mx, my := p.state.mapCoord(nx, ny, false)

	hasIJ := ip != nil || jp != nil
	seg := graphic.ArcSegment{Straight: true}
	if p.state.Interpolation != Linear && hasIJ {
		iv, jv := deref(ip), deref(jp)
		clockwise := p.state.Interpolation == ClockwiseCircular
		var cx, cy float64
		if p.state.MultiQuadrant {
			cx, cy = iv, jv
		} else {
			cx, cy = resolveSingleQuadrantCenter(x1, y1, nx, ny, iv, jv, clockwise)
		}
		mcx, mcy := p.state.mapCoord(x1+cx, y1+cy, false)
		seg = graphic.ArcSegment{Straight: false, Clockwise: clockwise, CenterX: mcx, CenterY: mcy}
	}

	if len(p.region.Outline) == 0 {
		// A region whose first statement is D01 (no preceding D02):
		// treat the starting point as an implicit outline origin.
		mx0, my0 := p.state.mapCoord(x1, y1, false)
		p.region.Outline = append(p.region.Outline, [2]float64{mx0, my0})
		p.region.ArcData = append(p.region.ArcData, graphic.ArcSegment{Straight: true})
	}
	p.region.Outline = append(p.region.Outline, [2]float64{mx, my})
	p.region.ArcData = append(p.region.ArcData, seg)
	return nil
}
