package ps

import (
	"fmt"
	"strings"
)

// Flags describing how one page region is placed on an output sheet.
const (
	FlagReversed = 1 << iota // page index counts from the end of each block
	FlagGSave                // placement needs its own graphics state
	FlagOffset
	FlagRotate
	FlagHFlip
	FlagVFlip
	FlagScale
	FlagAddNext // next spec shares this output sheet
)

// PageSpec places one region of one input page on an output sheet.
// Specs linked by FlagAddNext form a merge group sharing one sheet.
type PageSpec struct {
	PageNo int
	Flags  int
	Rotate int     // degrees, canonical 0, 90, 180 or 270
	Scale  float64 // defaults to 1
	XOff   float64 // points
	YOff   float64 // points
}

// transformed reports whether the spec needs any coordinate transform.
func (p *PageSpec) transformed() bool {
	return p.Flags&(FlagOffset|FlagRotate|FlagHFlip|FlagVFlip|FlagScale) != 0
}

// specError wraps a page specification syntax problem.
func specError(format string, args ...interface{}) error {
	return fmt.Errorf("page specification error: "+format, args...)
}

// ParseSpecs parses a page specification string of the form
//
//	[modulo:]spec[+spec|,spec]...
//
// where each spec is [-]pageno[turns][@scale][(xoff,yoff)] and turns is
// any run of L, R, U, H, V. It returns the modulo (default 1) and the
// ordered spec list.
func ParseSpecs(s string, cfg *Config) (int, []*PageSpec, error) {
	modulo := 1
	i := 0

	// Optional modulo prefix, an integer followed by ':'.
	if j := strings.IndexByte(s, ':'); j >= 0 {
		m := 0
		digits := false
		k := 0
		for ; k < j && s[k] >= '0' && s[k] <= '9'; k++ {
			m = m*10 + int(s[k]-'0')
			digits = true
		}
		if k == j && digits {
			if m < 1 {
				return 0, nil, specError("modulo must be positive")
			}
			modulo = m
			i = j + 1
		}
	}

	var specs []*PageSpec
	omitted := false
	for {
		sp := &PageSpec{Scale: 1}

		if i < len(s) && s[i] == '-' {
			sp.Flags |= FlagReversed
			i++
		}

		// Page number, optional only for a single-spec list.
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			n := 0
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				n = n*10 + int(s[i]-'0')
				i++
			}
			sp.PageNo = n
		} else {
			omitted = true
		}
		if sp.PageNo >= modulo {
			return 0, nil, specError("page number %d out of range (modulo %d)", sp.PageNo, modulo)
		}

		// Turns.
		for i < len(s) {
			done := false
			switch s[i] {
			case 'L':
				sp.Rotate += 90
			case 'R':
				sp.Rotate += 270
			case 'U':
				sp.Rotate += 180
			case 'H':
				sp.Flags ^= FlagHFlip
			case 'V':
				sp.Flags ^= FlagVFlip
			default:
				done = true
			}
			if done {
				break
			}
			i++
		}
		sp.Rotate %= 360
		if sp.Rotate != 0 {
			sp.Flags |= FlagRotate
		}

		// Scale factors; multiple '@' segments multiply.
		for i < len(s) && s[i] == '@' {
			val, j, err := parseNumber(s, i+1)
			if err != nil {
				return 0, nil, specError("bad scale at '%s'", s[i:])
			}
			if val <= 0 {
				return 0, nil, specError("scale must be positive")
			}
			sp.Scale *= val
			sp.Flags |= FlagScale
			i = j
		}

		// Offset "(x,y)".
		if i < len(s) && s[i] == '(' {
			x, j, err := parseDimenAt(s, i+1, cfg)
			if err != nil {
				return 0, nil, specError("%v", err)
			}
			if j >= len(s) || s[j] != ',' {
				return 0, nil, specError("',' expected at '%s'", s[j:])
			}
			y, j, err := parseDimenAt(s, j+1, cfg)
			if err != nil {
				return 0, nil, specError("%v", err)
			}
			if j >= len(s) || s[j] != ')' {
				return 0, nil, specError("')' expected at '%s'", s[j:])
			}
			sp.XOff, sp.YOff = x, y
			sp.Flags |= FlagOffset
			i = j + 1
		}

		if sp.transformed() {
			sp.Flags |= FlagGSave
		}
		specs = append(specs, sp)

		if i >= len(s) {
			break
		}
		switch s[i] {
		case '+':
			sp.Flags |= FlagAddNext
			i++
		case ',':
			i++
		default:
			return 0, nil, specError("unexpected '%c' in specification", s[i])
		}
		if i >= len(s) {
			return 0, nil, specError("specification ends with '%c'", s[i-1])
		}
	}

	if omitted && len(specs) > 1 {
		return 0, nil, specError("page number may only be omitted for a single page")
	}
	return modulo, specs, nil
}

// CountGroups returns the number of output sheets one specification
// cycle produces, i.e. the number of merge groups in the list.
func CountGroups(specs []*PageSpec) int {
	n := 0
	for _, sp := range specs {
		if sp.Flags&FlagAddNext == 0 {
			n++
		}
	}
	return n
}
