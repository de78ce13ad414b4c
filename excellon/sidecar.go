package excellon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/unit"
)

// Sidecar carries number-format hints recovered from a dialect's companion
// file (spec.md §3.8 "sidecar sniffing"): Allegro's nc_param.txt and
// Siemens/Altium's ncdrill.log both declare unit/notation/zero-suppression
// out of band, since the .drl/.txt body itself may omit an explicit
// METRIC/INCH header.
type Sidecar struct {
	Unit            unit.Unit
	Notation        cam.Notation
	ZeroSuppression cam.ZeroSuppression
	NumberFormat    cam.NumberFormat
}

var (
	ncParamFormat  = regexp.MustCompile(`(?im)^FORMAT\s+(\d)\.(\d)`)
	ncParamCoord   = regexp.MustCompile(`(?im)^COORDINATES\s+(ABSOLUTE|INCREMENTAL)`)
	ncParamUnit    = regexp.MustCompile(`(?im)^OUTPUT-UNITS\s+(INCHES|MM)`)
	ncParamLZSupp  = regexp.MustCompile(`(?im)^SUPPRESS-LEAD(?:ING)?-ZEROES\s+(YES|NO)`)
	ncParamTZSupp  = regexp.MustCompile(`(?im)^SUPPRESS-TRAIL(?:ING)?-ZEROES\s+(YES|NO)`)
)

// ParseAllegroNCParam parses an Allegro nc_param.txt sidecar's contents
// (grounded on original_source/gerbonara/gerber/excellon.py's
// parse_allegro_ncparam). Returns an error if both leading- and
// trailing-zero suppression are declared simultaneously, an invalid
// combination the source rejects.
func ParseAllegroNCParam(content string) (Sidecar, error) {
	var s Sidecar
	s.NumberFormat = cam.UnknownNumberFormat

	if m := ncParamFormat.FindStringSubmatch(content); m != nil {
		intDigits, _ := strconv.Atoi(m[1])
		fracDigits, _ := strconv.Atoi(m[2])
		s.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}
	}
	if m := ncParamCoord.FindStringSubmatch(content); m != nil {
		if strings.EqualFold(m[1], "INCREMENTAL") {
			s.Notation = cam.Incremental
		} else {
			s.Notation = cam.Absolute
		}
	}
	if m := ncParamUnit.FindStringSubmatch(content); m != nil {
		if strings.EqualFold(m[1], "MM") {
			s.Unit = unit.MM
		} else {
			s.Unit = unit.Inch
		}
	}

	lz := strings.EqualFold(matchGroup(ncParamLZSupp, content), "YES")
	tz := strings.EqualFold(matchGroup(ncParamTZSupp, content), "YES")
	if lz && tz {
		return s, &cam.ParseError{Kind: cam.FormatMismatch, Reason: "nc_param.txt declares both leading- and trailing-zero suppression"}
	}
	switch {
	case lz:
		s.ZeroSuppression = cam.Leading
	case tz:
		s.ZeroSuppression = cam.Trailing
	default:
		s.ZeroSuppression = cam.NoSuppression
	}
	return s, nil
}

func matchGroup(re *regexp.Regexp, content string) string {
	if m := re.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

var ncDrillLogFormat = regexp.MustCompile(`(?im)FORMAT\s*[:=]?\s*(\d)[.:](\d)`)
var ncDrillLogUnit = regexp.MustCompile(`(?im)\b(INCH|METRIC|MM)\b`)

// ParseNCDrillLog parses a Siemens/Altium ncdrill.log sidecar, a looser,
// free-text format: it's scanned for a "FORMAT n.n" token and an
// INCH/METRIC/MM keyword rather than matched against fixed field names.
func ParseNCDrillLog(content string) Sidecar {
	var s Sidecar
	s.NumberFormat = cam.UnknownNumberFormat
	s.ZeroSuppression = cam.ZeroSuppressionUnknown

	if m := ncDrillLogFormat.FindStringSubmatch(content); m != nil {
		intDigits, _ := strconv.Atoi(m[1])
		fracDigits, _ := strconv.Atoi(m[2])
		s.NumberFormat = cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}
	}
	if m := ncDrillLogUnit.FindStringSubmatch(content); m != nil {
		if strings.EqualFold(m[1], "INCH") {
			s.Unit = unit.Inch
		} else {
			s.Unit = unit.MM
		}
	}
	return s
}

// Apply copies every known field of s into the parser state. NewParser calls
// it once, before the body is read, so format directives in the body
// override what the sidecar set.
func (s Sidecar) Apply(st *ExcellonState) {
	if s.Unit.Known() {
		st.Unit = s.Unit
	}
	if s.Notation != cam.NotationUnknown {
		st.Notation = s.Notation
	}
	if s.ZeroSuppression != cam.ZeroSuppressionUnknown {
		st.ZeroSuppression = s.ZeroSuppression
	}
	if !s.NumberFormat.Unknown() {
		st.NumberFormat = s.NumberFormat
	}
}
