package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw files become a Dataset.
type Options struct {
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffed from the file name (',' or '\t').
	Delimiter rune
	// DecimalSeparator for numbers. If 0, auto-detected per value.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing when set.
	ThousandsSeparator rune
	// Sheet selects an XLSX sheet by name; SheetIndex (1-based) is used
	// when Sheet is empty.
	Sheet      string
	SheetIndex int
}

// DefaultOptions reads numbers with a '.' decimal point and no grouping,
// which matches what spreadsheet exports produce by default.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.', SheetIndex: 1}
}

var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

func isMissingToken(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339, time.RFC3339Nano,
	"2006-01-02", "2006/01/02", "2006.01.02",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04:05.000",
	"01/02/2006", "1/2/2006", "01/02/2006 15:04", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"02.01.2006", "2 Jan 2006", "Jan 2, 2006", "January 2, 2006", "2006-01", "Jan 2006",
}

// parseTime tries the known layouts in order; month-first wins over
// day-first for slash dates. Results are in UTC so values parsed from
// different offsets compare equal.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2},
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

// splitUnits separates a trailing unit annotation from a header,
// e.g. "Mass [mg/L]" -> ("Mass", "mg/L").
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	return ','
}
