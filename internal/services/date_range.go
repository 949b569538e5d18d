package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

// twoDayDefaultYear is assumed by the weekend pattern when the phrase names no year.
// Unlike single ranges it is not derived from the clock.
const twoDayDefaultYear = 2025

const (
	monthPattern   = `(january|february|march|april|may|june|july|august|september|october|november|december)`
	weekdayPattern = `(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	timePattern    = `(\d{1,2}(?::\d{2})?\s*(?:am|pm)|noon|midnight)`
	ordinalSuffix  = `(?:st|nd|rd|th)?`
)

var (
	meridiemDotted  = regexp.MustCompile(`(?i)(\d|\s)([ap])\.m\.?`)
	meridiemUpper   = regexp.MustCompile(`(?i)(\d|\s)(am|pm)\b`)
	localTimeSuffix = regexp.MustCompile(`(?i)\s*\blocal time\b`)
	timezoneAbbrev  = regexp.MustCompile(`\s*\b(?:PDT|PST|EDT|EST|CDT|CST|MDT|MST|UTC|GMT)\b`)
	eachDaySuffix   = regexp.MustCompile(`(?i)\s*\beach day\b`)
	leadingWeekday  = regexp.MustCompile(`(?i)^` + weekdayPattern + `,?\s*`)

	twoDayPhrase = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})` + ordinalSuffix +
		`,?\s+and\s+(?:` + weekdayPattern + `,?\s+)?` + monthPattern + `\s+(\d{1,2})` + ordinalSuffix +
		`(?:,?\s+(\d{4}))?,?\s+from\s+` + timePattern + `\s+to\s+` + timePattern + `$`)
	fromToPhrase = regexp.MustCompile(`(?i)^(.+?),?\s+from\s+` + timePattern + `\s+to\s+` + timePattern + `$`)
	andJoin      = regexp.MustCompile(`(?i),?\s+and\s+`)

	sideYear = regexp.MustCompile(`(?:^|[\s,])(\d{4})\b`)
	sideTime = regexp.MustCompile(`(?i)(?:\bat\s+)?(?:\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b|\b(noon|midnight)\b)`)
	dayToken = regexp.MustCompile(`(?i)^(\d{1,2})` + ordinalSuffix + `$`)
)

// DateRangeParser turns event date phrases such as
// "Saturday, June 21, 2025, from 2:00 p.m. to 5:00 p.m. local time"
// into wall-clock ranges. It never fails loudly: an unparseable phrase
// yields no ranges.
type DateRangeParser struct {
	loc *time.Location
	now func() time.Time
}

// NewDateRangeParser builds a parser placing wall-clock times in loc (UTC when nil)
func NewDateRangeParser(loc *time.Location) *DateRangeParser {
	if loc == nil {
		loc = time.UTC
	}
	return &DateRangeParser{loc: loc, now: time.Now}
}

// WithClock returns a copy of the parser that reads the current year from now
func (p *DateRangeParser) WithClock(now func() time.Time) *DateRangeParser {
	clone := *p
	clone.now = now
	return &clone
}

// Location returns the location ranges are expressed in
func (p *DateRangeParser) Location() *time.Location {
	return p.loc
}

var defaultDateParser = NewDateRangeParser(time.UTC)

// ParseDateRange parses phrase with a UTC wall clock
func ParseDateRange(phrase string) []models.DateRange {
	return defaultDateParser.Parse(phrase)
}

// Parse returns zero ranges for unparseable input, two for the
// "Day1 and Day2, from T1 to T2" weekend pattern, and one otherwise.
func (p *DateRangeParser) Parse(phrase string) []models.DateRange {
	ranges, result := p.parse(phrase)
	metrics.DateParseTotal.WithLabelValues(result).Inc()
	return ranges
}

func (p *DateRangeParser) parse(phrase string) ([]models.DateRange, string) {
	s := normalizeDatePhrase(phrase)
	if s == "" {
		return nil, "empty"
	}

	// The weekend pattern also contains " from " and " to ", so it must be
	// tried before the from/to rewrite
	if m := twoDayPhrase.FindStringSubmatch(s); m != nil {
		ranges := p.parseTwoDay(m)
		if len(ranges) == 0 {
			return nil, "empty"
		}
		return ranges, "two_day"
	}

	if m := fromToPhrase.FindStringSubmatch(s); m != nil {
		date := strings.Trim(m[1], " ,")
		s = fmt.Sprintf("%s, at %s to %s, at %s", date, m[2], date, m[3])
	}

	s = andJoin.ReplaceAllString(s, " to ")

	parts := strings.Split(s, " to ")
	if len(parts) > 2 {
		return nil, "empty"
	}

	start, ok := parseDateSide(parts[0])
	if !ok || !start.hasDate {
		return nil, "empty"
	}

	if len(parts) == 1 {
		p.fillYears(&start, nil)
		ms, ok := start.epochMillis(p.loc)
		if !ok {
			return nil, "empty"
		}
		return []models.DateRange{{Start: ms, End: ms}}, "single"
	}

	end, ok := parseDateSide(parts[1])
	if !ok {
		return nil, "empty"
	}
	if !end.hasDate {
		end.month, end.day = start.month, start.day
		end.year, end.hasYear = start.year, start.hasYear
		end.hasDate, end.inherited = true, true
	}

	p.fillYears(&start, &end)
	startMS, ok := start.epochMillis(p.loc)
	if !ok {
		return nil, "empty"
	}
	endMS, ok := end.epochMillis(p.loc)
	if !ok {
		return nil, "empty"
	}

	// "December 30 to January 2" crosses a year boundary
	if endMS < startMS && !end.inherited {
		switch {
		case start.yearFromOther:
			start.year--
			startMS, ok = start.epochMillis(p.loc)
		case end.yearDefaulted || end.yearFromOther:
			end.year++
			endMS, ok = end.epochMillis(p.loc)
		}
		if !ok {
			return nil, "empty"
		}
	}
	if endMS < startMS {
		return nil, "empty"
	}

	return []models.DateRange{{Start: startMS, End: endMS}}, "range"
}

func (p *DateRangeParser) parseTwoDay(m []string) []models.DateRange {
	year := twoDayDefaultYear
	if m[5] != "" {
		year, _ = strconv.Atoi(m[5])
	}

	fromHour, fromMinute, ok := parseClock(m[6])
	if !ok {
		return nil
	}
	toHour, toMinute, ok := parseClock(m[7])
	if !ok {
		return nil
	}

	var ranges []models.DateRange
	for _, day := range [][2]string{{m[1], m[2]}, {m[3], m[4]}} {
		month, ok := MonthIndex(day[0])
		if !ok {
			return nil
		}
		dayNum, _ := strconv.Atoi(day[1])
		start := dateSide{year: year, month: month, day: dayNum, hour: fromHour, minute: fromMinute, hasDate: true}
		end := dateSide{year: year, month: month, day: dayNum, hour: toHour, minute: toMinute, hasDate: true}
		startMS, ok := start.epochMillis(p.loc)
		if !ok {
			return nil
		}
		endMS, ok := end.epochMillis(p.loc)
		if !ok || endMS < startMS {
			return nil
		}
		ranges = append(ranges, models.DateRange{Start: startMS, End: endMS})
	}
	return ranges
}

// fillYears resolves missing years: a side without a year borrows the other
// side's, and falls back to the clock's current year
func (p *DateRangeParser) fillYears(start, end *dateSide) {
	current := p.now().In(p.loc).Year()
	if end == nil {
		if !start.hasYear {
			start.year = current
			start.yearDefaulted = true
		}
		return
	}

	switch {
	case !start.hasYear && end.hasYear:
		start.year = end.year
		start.yearFromOther = true
	case !start.hasYear:
		start.year = current
		start.yearDefaulted = true
	}

	switch {
	case !end.hasYear && start.hasYear:
		end.year = start.year
		end.yearFromOther = true
	case !end.hasYear:
		end.year = start.year
		end.yearDefaulted = true
	}
}

// normalizeDatePhrase applies the cleanup every branch relies on
func normalizeDatePhrase(phrase string) string {
	s := strings.ReplaceAll(phrase, "\u00a0", " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = meridiemDotted.ReplaceAllString(s, "${1}${2}m")
	s = meridiemUpper.ReplaceAllStringFunc(s, strings.ToLower)
	s = localTimeSuffix.ReplaceAllString(s, "")
	s = timezoneAbbrev.ReplaceAllString(s, "")
	s = eachDaySuffix.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, " ,.")
	s = leadingWeekday.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// dateSide is one half of a "<start> to <end>" phrase
type dateSide struct {
	year, month, day int
	hour, minute     int
	hasYear          bool
	hasDate          bool
	hasTime          bool
	yearDefaulted    bool // taken from the clock
	yearFromOther    bool // borrowed from the other side
	inherited        bool // date copied from the start side
}

func parseDateSide(side string) (dateSide, bool) {
	var d dateSide
	s := leadingWeekday.ReplaceAllString(strings.TrimSpace(side), "")

	if loc := sideYear.FindStringSubmatchIndex(s); loc != nil {
		d.year, _ = strconv.Atoi(s[loc[2]:loc[3]])
		d.hasYear = true
		s = s[:loc[0]] + " " + s[loc[1]:]
	}

	if loc := sideTime.FindStringIndex(s); loc != nil {
		hour, minute, ok := parseClock(s[loc[0]:loc[1]])
		if !ok {
			return d, false
		}
		d.hour, d.minute, d.hasTime = hour, minute, true
		s = s[:loc[0]] + " " + s[loc[1]:]
	}

	s = leadingWeekday.ReplaceAllString(strings.Trim(s, " ,"), "")
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) == 0 {
		// a bare time inherits the other side's date
		return d, d.hasTime && !d.hasYear
	}
	if len(fields) < 2 {
		return d, false
	}

	month, ok := MonthIndex(fields[0])
	if !ok {
		return d, false
	}
	m := dayToken.FindStringSubmatch(fields[1])
	if m == nil {
		return d, false
	}
	day, _ := strconv.Atoi(m[1])
	if day < 1 || day > 31 {
		return d, false
	}

	d.month, d.day, d.hasDate = month, day, true
	return d, true
}

// parseClock converts "2:00 pm", "10am", "noon" or "midnight" to 24-hour time
func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "at "))
	switch s {
	case "noon":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}

	var meridiem string
	switch {
	case strings.HasSuffix(s, "am"):
		meridiem = "am"
	case strings.HasSuffix(s, "pm"):
		meridiem = "pm"
	default:
		return 0, 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	if hasMinutes {
		minute, err = strconv.Atoi(minutePart)
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}

	if meridiem == "pm" && hour != 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	return hour, minute, true
}

// epochMillis rejects impossible dates such as February 30
func (d dateSide) epochMillis(loc *time.Location) (int64, bool) {
	t := time.Date(d.year, time.Month(d.month+1), d.day, d.hour, d.minute, 0, 0, loc)
	if t.Day() != d.day || int(t.Month()) != d.month+1 {
		return 0, false
	}
	return t.UnixMilli(), true
}
