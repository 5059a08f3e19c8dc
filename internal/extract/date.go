package extract

import (
	"regexp"
	"strconv"
	"strings"

	"cardtrack/internal/core"
)

// Spanish month abbreviations as printed on card statements.
var spanishMonths = map[string]int{
	"ene": 1, "feb": 2, "mar": 3, "abr": 4, "may": 5, "jun": 6,
	"jul": 7, "ago": 8, "sep": 9, "oct": 10, "nov": 11, "dic": 12,
}

var (
	// 26-Nov-25
	namedDateRe = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})\.?-(\d{2})$`)
	// 2024-03-01
	isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	// 01/03/2024, 01/03/24, 01/03
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2}(?:\d{2})?))?$`)
)

// parseDate reads one date token in any of the supported statement
// formats. Tokens without a year take refYear.
func parseDate(token string, refYear int) (core.Date, bool) {
	token = strings.TrimSpace(token)

	if m := namedDateRe.FindStringSubmatch(token); m != nil {
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if !ok {
			return core.Date{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return makeDate(year+2000, month, day)
	}

	if m := isoDateRe.FindStringSubmatch(token); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}

	if m := slashDateRe.FindStringSubmatch(token); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := refYear
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		return makeDate(year, month, day)
	}

	return core.Date{}, false
}

// makeDate rejects out-of-range components, which time.Date would
// silently normalize.
func makeDate(year, month, day int) (core.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return core.Date{}, false
	}
	d := core.NewDate(year, month, day)
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return core.Date{}, false
	}
	return d, true
}
