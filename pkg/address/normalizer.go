package address

import (
	"strings"
	"unicode"
)

// directionals are cased as plain uppercase regardless of how the MLS feed
// spelled them ("Nw Market St" -> "NW Market St").
var directionals = map[string]struct{}{
	"N": {}, "S": {}, "E": {}, "W": {},
	"NE": {}, "NW": {}, "SE": {}, "SW": {},
}

// unitTokens maps unit designators to their canonical uppercase form. The
// canonical forms map to themselves so a second pass is a no-op.
var unitTokens = map[string]string{
	"APT": "APT", "APARTMENT": "APT",
	"STE": "STE", "SUITE": "STE",
	"UNIT": "UNIT",
	"FL": "FL", "FLOOR": "FL",
	"BLDG": "BLDG", "BUILDING": "BLDG",
	"RM": "RM", "ROOM": "RM",
	"LOT": "LOT",
	"TRLR": "TRLR", "TRAILER": "TRLR",
}

var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

// Normalize canonicalizes a raw unparsed address string so that two
// differently formatted feed values for the same physical address collapse
// into one display string. It is a pure function and idempotent:
// Normalize(Normalize(x)) == Normalize(x) for any input. Empty or whitespace
// input returns the empty string.
func Normalize(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}

	out := make([]string, len(fields))
	for i, field := range fields {
		core, trailing := splitTrailingPunct(field)
		if core == "" {
			out[i] = field
			continue
		}

		upper := strings.ToUpper(core)

		switch {
		case isOrdinal(upper):
			// "1ST" -> "1st"
			out[i] = digitsPrefix(core) + strings.ToLower(suffixAfterDigits(core)) + trailing
		case hasDigit(core):
			// Street numbers, zip codes, unit numbers like "5A" pass through.
			out[i] = field
		case strings.HasPrefix(core, "#"):
			out[i] = field
		default:
			if _, ok := directionals[upper]; ok {
				out[i] = upper + trailing
				break
			}
			if canonical, ok := unitTokens[upper]; ok {
				out[i] = canonical + trailing
				break
			}
			if _, ok := stateCodes[upper]; ok && len(core) == 2 && isStatePosition(fields, i) {
				out[i] = upper + trailing
				break
			}
			out[i] = titleCase(core) + trailing
		}
	}

	return strings.Join(out, " ")
}

// isStatePosition reports whether the token at index i sits where a state
// code belongs: last token, or followed only by an all-digit zip token.
func isStatePosition(fields []string, i int) bool {
	if i == len(fields)-1 {
		return true
	}
	if i == len(fields)-2 {
		next, _ := splitTrailingPunct(fields[i+1])
		return next != "" && allDigits(next)
	}
	return false
}

func splitTrailingPunct(s string) (core, trailing string) {
	end := len(s)
	for end > 0 {
		c := s[end-1]
		if c == ',' || c == '.' || c == ';' {
			end--
			continue
		}
		break
	}
	return s[:end], s[end:]
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isOrdinal matches uppercase ordinal street tokens: 1ST, 22ND, 3RD, 145TH.
func isOrdinal(upper string) bool {
	digits := digitsPrefix(upper)
	if digits == "" {
		return false
	}
	switch upper[len(digits):] {
	case "ST", "ND", "RD", "TH":
		return true
	}
	return false
}

func digitsPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func suffixAfterDigits(s string) string {
	return s[len(digitsPrefix(s)):]
}

// titleCase uppercases the first letter of each hyphen-separated part and
// lowercases the rest ("SPRING" -> "Spring", "smith-jones" -> "Smith-Jones").
func titleCase(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, "-")
}
