package geo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// "# 12-34", "#12 - 34", "No. 12-34"
	streetNumberRe = regexp.MustCompile(`(?i)\s*(#|\bno\.?|\bn°)\s*\d+[a-z]?\s*(-\s*\d+[a-z]?)?`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// StripAccents removes combining marks: "Bogotá" becomes "Bogota".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// StripStreetNumber drops the Colombian style plate number from an address.
func StripStreetNumber(address string) string {
	return cleanSpaces(streetNumberRe.ReplaceAllString(address, ""))
}

func cleanSpaces(s string) string {
	s = spacesRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.Trim(s, " ,")
}

// Candidates returns the queries tried in order for a forward lookup, without duplicates.
func Candidates(q Query) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(parts ...string) {
		var nonEmpty []string
		for _, p := range parts {
			if p = cleanSpaces(p); p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		s := strings.Join(nonEmpty, ", ")
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	add(q.Address, q.Neighborhood, q.City, q.Country)
	add(StripAccents(q.Address), StripAccents(q.Neighborhood), StripAccents(q.City), q.Country)
	add(StripStreetNumber(StripAccents(q.Address)), StripAccents(q.City), q.Country)
	add(q.Neighborhood, q.City, q.Country)
	add(q.City, q.Country)
	return out
}
