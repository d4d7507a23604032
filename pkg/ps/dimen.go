package ps

import (
	"fmt"
	"strconv"
)

// Points per unit for the recognised dimension suffixes.
const (
	ptsPerInch = 72.0
	ptsPerCm   = 28.3464566929133852
	ptsPerMm   = 2.83464566929133852
)

// parseNumber scans a signed decimal number starting at s[i] and returns
// its value and the index of the first byte after it.
func parseNumber(s string, i int) (float64, int, error) {
	start := i
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	digits := false
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
		digits = true
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			digits = true
		}
	}
	if !digits {
		return 0, start, fmt.Errorf("number expected at '%s'", s[start:])
	}
	val, err := strconv.ParseFloat(s[start:j], 64)
	if err != nil {
		return 0, start, fmt.Errorf("bad number '%s'", s[start:j])
	}
	return val, j, nil
}

// parseDimenAt scans a dimension (number plus optional unit suffix)
// starting at s[i] and returns its value in points and the index of the
// first byte after it. The "w" and "h" units require the corresponding
// output paper dimension to be set in cfg.
func parseDimenAt(s string, i int, cfg *Config) (float64, int, error) {
	val, j, err := parseNumber(s, i)
	if err != nil {
		return 0, i, err
	}
	if j+1 < len(s) {
		switch s[j : j+2] {
		case "pt":
			return val, j + 2, nil
		case "in":
			return val * ptsPerInch, j + 2, nil
		case "cm":
			return val * ptsPerCm, j + 2, nil
		case "mm":
			return val * ptsPerMm, j + 2, nil
		}
	}
	if j < len(s) {
		switch s[j] {
		case 'w':
			if cfg == nil || cfg.Width <= 0 {
				return 0, i, fmt.Errorf("width not set for 'w' dimension")
			}
			return val * cfg.Width, j + 1, nil
		case 'h':
			if cfg == nil || cfg.Height <= 0 {
				return 0, i, fmt.Errorf("height not set for 'h' dimension")
			}
			return val * cfg.Height, j + 1, nil
		}
	}
	return val, j, nil
}

// ParseDimen parses a complete dimension string into points. Trailing
// bytes after the dimension are an error.
func ParseDimen(s string, cfg *Config) (float64, error) {
	val, j, err := parseDimenAt(s, 0, cfg)
	if err != nil {
		return 0, err
	}
	if j != len(s) {
		return 0, fmt.Errorf("bad dimension '%s'", s)
	}
	return val, nil
}
