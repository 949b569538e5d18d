package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining diacritical marks after canonical decomposition
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// apostropheRemover drops straight and typographic apostrophes so that
// "Farfetch'd", "Farfetch’d" and "Farfetchd" all compare equal
var apostropheRemover = strings.NewReplacer(
	"'", "",
	"’", "", // right single quotation mark
	"‘", "", // left single quotation mark
	"ʼ", "", // modifier letter apostrophe
	"′", "", // prime
	"`", "",
)

// DiacriticFold lowercases s, removes apostrophes and strips combining marks,
// so "Flabébé" and "flabebe" compare equal.
func DiacriticFold(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(apostropheRemover.Replace(s))
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return folded
}

// decorationOverrides are applied in order by plain substring replacement.
// Keys must not occur inside unrelated names.
var decorationOverrides = []struct {
	from string
	to   string
}{
	{"alola form", "alolan"},
	{"galar form", "galarian"},
	{"hisui form", "hisuian"},
	{"paldea form", "paldean"},
	{"mr mime", "mr. mime"},
	{"mime jr", "mime jr."},
	{"nidoran female", "nidoran♀"},
	{"nidoran male", "nidoran♂"},
	{"hooh", "ho-oh"},
}

// StripDecorations removes presentation noise from an already folded name:
// a leading "*", the words " forme" and " cloak", a "(normal)" qualifier,
// then applies decorationOverrides.
func StripDecorations(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "*")
	s = strings.ReplaceAll(s, " forme", "")
	s = strings.ReplaceAll(s, "(normal)", "")
	s = strings.ReplaceAll(s, " cloak", "")
	for _, o := range decorationOverrides {
		if strings.Contains(s, o.to) {
			continue
		}
		s = strings.ReplaceAll(s, o.from, o.to)
	}
	return strings.Join(strings.Fields(s), " ")
}

var idReplacer = strings.NewReplacer(
	". ", "_",
	"-", "_",
	"'", "",
	"’", "",
	":", "",
	" ", "_",
	"♂", "_male",
	"♀", "_female",
)

// Idify converts a display name to the catalog id convention,
// e.g. "Mr. Mime" -> "mr_mime", "Nidoran♀" -> "nidoran_female".
// Idify(Idify(x)) == Idify(x).
func Idify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, " (jr)") {
		s = strings.TrimSuffix(s, " (jr)") + "_jr"
	}
	s = idReplacer.Replace(s)
	s = strings.TrimRight(s, ".")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

var monthIndex = map[string]int{
	"january":   0,
	"february":  1,
	"march":     2,
	"april":     3,
	"may":       4,
	"june":      5,
	"july":      6,
	"august":    7,
	"september": 8,
	"october":   9,
	"november":  10,
	"december":  11,
}

// MonthIndex returns the zero-based month for an English month name
func MonthIndex(name string) (int, bool) {
	idx, ok := monthIndex[strings.ToLower(strings.Trim(name, " ,."))]
	return idx, ok
}
