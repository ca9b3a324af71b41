package analysis

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const driverCodeLen = 3

// DriverDirectory lists the distinct driver names with a result in the
// season range, sorted ascending. With winnersOnly set, only drivers
// who won a race in the range are listed.
func DriverDirectory(in Input, fromYear, toYear int, winnersOnly bool) []string {
	raceYear := make(map[int]int, len(in.Races))
	for _, r := range in.Races {
		if r.Year >= fromYear && r.Year <= toYear {
			raceYear[r.RaceID] = r.Year
		}
	}
	driverByID := make(map[int]string, len(in.Drivers))
	for _, d := range in.Drivers {
		driverByID[d.DriverID] = d.FullName()
	}

	seen := make(map[string]struct{})
	for _, res := range in.Results {
		if _, ok := raceYear[res.RaceID]; !ok {
			continue
		}
		if winnersOnly && res.PositionOrder != 1 {
			continue
		}
		name := driverByID[res.DriverID]
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DriverCode derives the three-letter telemetry code from a full
// driver name: last name, diacritics stripped, first three letters
// upper-cased. "Sergio Pérez" becomes "PER".
func DriverCode(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	surname := stripMarks(parts[len(parts)-1])
	if len(surname) > driverCodeLen {
		surname = surname[:driverCodeLen]
	}
	return strings.ToUpper(surname)
}

// stripMarks removes nonspacing marks after NFKD decomposition.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
