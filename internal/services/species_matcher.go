package services

import (
	"log"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

// ReportKind classifies why a line produced no match
type ReportKind string

const (
	ReportAmbiguousBaseName   ReportKind = "ambiguous-base-name"
	ReportAmbiguousForm       ReportKind = "ambiguous-form"
	ReportNoFormMatch         ReportKind = "no-form-match"
	ReportNoMegaCoverage      ReportKind = "no-mega-coverage"
	ReportMultipleForms       ReportKind = "multiple-forms"
	ReportUnmappedSpecialCase ReportKind = "unmapped-special-case"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// ResolutionReport describes a line the matcher refused to resolve
type ResolutionReport struct {
	Line       string     `json:"line"`
	Normalized string     `json:"normalized"`
	Kind       ReportKind `json:"kind"`
	Severity   Severity   `json:"severity"`
	Detail     string     `json:"detail"`
	Candidates []string   `json:"candidates,omitempty"`
}

// Reporter receives resolution reports; it must not block
type Reporter func(ResolutionReport)

// LogReporter writes reports to the standard logger
func LogReporter(r ResolutionReport) {
	prefix := ""
	switch r.Severity {
	case SeverityWarn:
		prefix = "Warning: "
	case SeverityError:
		prefix = "Error: "
	}
	if len(r.Candidates) > 0 {
		log.Printf("[SpeciesMatcher] %s%s for %q: %s (candidates: %s)",
			prefix, r.Kind, r.Line, r.Detail, strings.Join(r.Candidates, ", "))
		return
	}
	log.Printf("[SpeciesMatcher] %s%s for %q: %s", prefix, r.Kind, r.Line, r.Detail)
}

// Mention is one extracted line plus the shiny flag derived from its context
type Mention struct {
	Text  string `json:"text"`
	Shiny bool   `json:"shiny"`
}

// MatcherOptions configures a SpeciesMatcher
type MatcherOptions struct {
	// NameOverrides are substring corrections applied to folded text,
	// longest key first (e.g. "pikachu libre" -> "pikachu (libre)").
	NameOverrides map[string]string
	// Reporter receives unresolved lines. Defaults to LogReporter.
	Reporter Reporter
	// PatternCacheSize bounds the compiled word-pattern cache. Defaults to 4096.
	PatternCacheSize int
}

const defaultPatternCacheSize = 4096

var (
	costumePattern    = regexp.MustCompile(`(?i)\s+wearing\b.*$`)
	tierHeaderPattern = regexp.MustCompile(`(?i)^(.+?)\s+raids?\s*:?$`)
)

// tokenPunctuation is trimmed from tokens before vocabulary lookups
const tokenPunctuation = "()[],;:!?"

type nameOverride struct {
	from string
	to   string
}

// SpeciesMatcher resolves free-text species mentions to catalog entries.
// It is safe for concurrent use; each call only reads the catalog.
type SpeciesMatcher struct {
	catalog   *models.Catalog
	overrides []nameOverride
	report    Reporter
	patterns  *lru.Cache[string, *regexp.Regexp]
}

func NewSpeciesMatcher(catalog *models.Catalog, opts MatcherOptions) (*SpeciesMatcher, error) {
	size := opts.PatternCacheSize
	if size <= 0 {
		size = defaultPatternCacheSize
	}
	patterns, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, err
	}

	overrides := appendOverrides(nil, opts.NameOverrides)

	report := opts.Reporter
	if report == nil {
		report = LogReporter
	}

	return &SpeciesMatcher{
		catalog:   catalog,
		overrides: overrides,
		report:    report,
		patterns:  patterns,
	}, nil
}

// WithReporter returns a matcher sharing this one's catalog and caches
// that sends reports to r instead
func (m *SpeciesMatcher) WithReporter(r Reporter) *SpeciesMatcher {
	clone := *m
	clone.report = r
	return &clone
}

// WithOverrides returns a matcher sharing this one's catalog and caches with
// extra name overrides layered over the configured ones
func (m *SpeciesMatcher) WithOverrides(extra map[string]string) *SpeciesMatcher {
	if len(extra) == 0 {
		return m
	}
	replaced := make(map[string]bool, len(extra))
	for from := range extra {
		replaced[DiacriticFold(from)] = true
	}
	clone := *m
	kept := make([]nameOverride, 0, len(m.overrides))
	for _, o := range m.overrides {
		if !replaced[o.from] {
			kept = append(kept, o)
		}
	}
	clone.overrides = appendOverrides(kept, extra)
	return &clone
}

// appendOverrides folds and adds overrides, keeping the longest key first so
// "mr mime galarian" wins over "mr mime"
func appendOverrides(dst []nameOverride, overrides map[string]string) []nameOverride {
	for from, to := range overrides {
		if from = DiacriticFold(from); from == "" {
			continue
		}
		dst = append(dst, nameOverride{from: from, to: DiacriticFold(to)})
	}
	sort.Slice(dst, func(i, j int) bool {
		if len(dst[i].from) != len(dst[j].from) {
			return len(dst[i].from) > len(dst[j].from)
		}
		return dst[i].from < dst[j].from
	})
	return dst
}

// Catalog returns the catalog the matcher resolves against
func (m *SpeciesMatcher) Catalog() *models.Catalog {
	return m.catalog
}

// MatchAll resolves each line against domain. Output follows input order;
// a species id appears once, at its first position, carrying the fields of
// its last occurrence.
func (m *SpeciesMatcher) MatchAll(lines []string, domain models.Domain) []models.SpeciesMatch {
	mentions := make([]Mention, len(lines))
	for i, line := range lines {
		mentions[i] = Mention{Text: line}
	}
	return m.MatchMentions(mentions, domain)
}

// MatchMentions is MatchAll for lines that already carry a shiny flag
func (m *SpeciesMatcher) MatchMentions(mentions []Mention, domain models.Domain) []models.SpeciesMatch {
	idx := indexEntries(domain)
	out := make([]models.SpeciesMatch, 0, len(mentions))
	position := make(map[string]int, len(mentions))

	var tier tierState
	for _, mention := range mentions {
		next, entry, ok := m.step(tier, mention.Text, domain, idx)
		tier = next
		if !ok {
			continue
		}

		match := models.SpeciesMatch{SpeciesID: entry.ID, Shiny: mention.Shiny, Kind: tier.label}
		if pos, seen := position[entry.ID]; seen {
			out[pos] = match
			continue
		}
		position[entry.ID] = len(out)
		out = append(out, match)
	}
	return out
}

// Resolve resolves a single line with no tier context
func (m *SpeciesMatcher) Resolve(line string, domain models.Domain) (models.SpeciesEntry, bool) {
	_, entry, ok := m.step(tierState{}, line, domain, indexEntries(domain))
	return entry, ok
}

// tierState is the carry-forward raid tier of one batch. The zero value
// means no tier header has been seen yet.
type tierState struct {
	label string
}

// indexedEntry caches the folded forms of an entry's display name
type indexedEntry struct {
	entry     models.SpeciesEntry
	matchName string // folded, decorations and shadow/mega tokens removed
	form      string // parenthetical qualifier of matchName, or ""
}

func indexEntries(entries []models.SpeciesEntry) []indexedEntry {
	out := make([]indexedEntry, 0, len(entries))
	for _, e := range entries {
		name, _, _ := extractStatusTokens(StripDecorations(DiacriticFold(e.Name)))
		out = append(out, indexedEntry{entry: e, matchName: name, form: formOf(name)})
	}
	return out
}

// extractStatusTokens removes standalone "shadow" and "mega" tokens
func extractStatusTokens(s string) (rest string, shadow, mega bool) {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		switch strings.Trim(f, tokenPunctuation) {
		case "shadow":
			shadow = true
			continue
		case "mega":
			mega = true
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), shadow, mega
}

// lineQuery is the per-line state of the resolution funnel
type lineQuery struct {
	raw    string
	text   string
	shadow bool
	mega   bool
}

// step runs the resolution funnel for one line and returns the next tier state
func (m *SpeciesMatcher) step(tier tierState, line string, domain models.Domain, idx []indexedEntry) (tierState, models.SpeciesEntry, bool) {
	trimmed := strings.TrimSpace(costumePattern.ReplaceAllString(line, ""))
	if trimmed == "" {
		return tier, models.SpeciesEntry{}, false
	}

	if header := tierHeaderPattern.FindStringSubmatch(trimmed); header != nil {
		return tierState{label: strings.TrimSpace(strings.TrimPrefix(header[1], "*"))}, models.SpeciesEntry{}, false
	}

	normalized := m.applyOverrides(StripDecorations(DiacriticFold(trimmed)))
	rest, shadow, mega := extractStatusTokens(normalized)
	if rest == "" {
		return tier, models.SpeciesEntry{}, false
	}
	q := lineQuery{raw: line, text: rest, shadow: shadow, mega: mega}

	entry, ok, outcome := m.resolve(q, domain, idx)
	if ok {
		metrics.SpeciesResolutionsTotal.WithLabelValues(outcome).Inc()
	} else {
		metrics.SpeciesResolutionsTotal.WithLabelValues("unresolved").Inc()
	}
	return tier, entry, ok
}

func (m *SpeciesMatcher) applyOverrides(s string) string {
	for _, o := range m.overrides {
		if o.from != "" && strings.Contains(s, o.from) {
			s = strings.ReplaceAll(s, o.from, o.to)
		}
	}
	return s
}

func (m *SpeciesMatcher) resolve(q lineQuery, domain models.Domain, idx []indexedEntry) (models.SpeciesEntry, bool, string) {
	// Fast path: the text already is an id
	if !q.shadow && !q.mega {
		if entry, ok := m.directHit(Idify(q.text), domain); ok {
			return entry, true, "direct"
		}
	}

	var hits []indexedEntry
	for _, ie := range idx {
		if ie.matchName != "" && m.containsWord(q.text, ie.matchName) {
			hits = append(hits, ie)
		}
	}
	bases := m.longestNames(hits)
	dexes := make(map[int]bool)
	for _, ie := range bases {
		dexes[ie.entry.Dex] = true
	}

	switch {
	case len(bases) == 0:
		entry, ok := m.resolveFormOnly(q, domain, idx)
		return entry, ok, "form_only"
	case len(dexes) > 1:
		m.emit(q, ReportAmbiguousBaseName, SeverityError, "more than one base species named in text", idsOf(bases))
		return models.SpeciesEntry{}, false, ""
	}

	entry, ok := m.resolveForm(q, bases[0].entry, domain, idx)
	return entry, ok, "base"
}

// longestNames drops hits whose name occurs as a whole word inside another
// hit's longer name, so "porygon-z" does not also count as "porygon"
func (m *SpeciesMatcher) longestNames(hits []indexedEntry) []indexedEntry {
	if len(hits) < 2 {
		return hits
	}
	var out []indexedEntry
	for _, h := range hits {
		shadowed := false
		for _, other := range hits {
			if len(other.matchName) > len(h.matchName) && m.containsWord(other.matchName, h.matchName) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, h)
		}
	}
	return out
}

// directHit looks the id up in the full catalog, following an alias to its
// canonical entry unless the domain explicitly holds the alias
func (m *SpeciesMatcher) directHit(id string, domain models.Domain) (models.SpeciesEntry, bool) {
	if id == "" {
		return models.SpeciesEntry{}, false
	}
	entry, ok := m.catalog.Get(id)
	if !ok {
		return models.SpeciesEntry{}, false
	}
	if entry.IsAlias() && !domain.Contains(entry.ID) {
		return m.catalog.Get(entry.AliasID)
	}
	return entry, true
}

// scope returns the entries of one dex eligible for the requested flags.
// Shadow and mega lookups escape the domain since restricted domains
// usually exclude those variants.
func (m *SpeciesMatcher) scope(q lineQuery, domain models.Domain, idx []indexedEntry, dex int) []indexedEntry {
	var pool []indexedEntry
	if q.shadow || q.mega {
		var entries []models.SpeciesEntry
		if dex > 0 {
			entries = m.catalog.ByDex(dex)
		} else {
			entries = m.catalog.Entries()
		}
		pool = indexEntries(entries)
	} else {
		for _, ie := range idx {
			if dex <= 0 || ie.entry.Dex == dex {
				pool = append(pool, ie)
			}
		}
	}

	var out []indexedEntry
	for _, ie := range pool {
		if ie.entry.IsShadow != q.shadow || ie.entry.IsMega != q.mega {
			continue
		}
		if ie.entry.IsAlias() && !domain.Contains(ie.entry.ID) {
			continue
		}
		out = append(out, ie)
	}
	return out
}

// resolveForm picks the variant of an isolated base species
func (m *SpeciesMatcher) resolveForm(q lineQuery, base models.SpeciesEntry, domain models.Domain, idx []indexedEntry) (models.SpeciesEntry, bool) {
	candidates := m.scope(q, domain, idx, base.Dex)

	if q.mega && megaXYDex[base.Dex] && len(candidates) > 1 {
		if entry, ok := pickMegaXY(q.text, candidates); ok {
			return entry, true
		}
	}

	switch len(candidates) {
	case 0:
		if q.mega {
			m.emit(q, ReportNoMegaCoverage, SeverityInfo, "no mega variant of "+base.ID+" in catalog", nil)
		} else {
			m.emit(q, ReportNoFormMatch, SeverityWarn, "no eligible variant of "+base.ID, nil)
		}
		return models.SpeciesEntry{}, false
	case 1:
		return candidates[0].entry, true
	}

	var hits []indexedEntry
	for _, c := range candidates {
		if c.form != "" && m.containsWord(q.text, c.form) {
			hits = append(hits, c)
		}
	}
	hits = longestForms(hits)
	if len(hits) == 1 {
		return hits[0].entry, true
	}

	if len(hits) == 0 && q.shadow {
		var plain []indexedEntry
		for _, c := range candidates {
			if c.form == "" {
				plain = append(plain, c)
			}
		}
		if len(plain) == 1 {
			return plain[0].entry, true
		}
	}

	m.emit(q, ReportAmbiguousForm, SeverityError, "several variants of "+base.ID+" remain", idsOf(candidates))
	return models.SpeciesEntry{}, false
}

// resolveFormOnly handles text that carries a form qualifier but no base name
func (m *SpeciesMatcher) resolveFormOnly(q lineQuery, domain models.Domain, idx []indexedEntry) (models.SpeciesEntry, bool) {
	tokens := strings.Fields(q.text)
	for i, t := range tokens {
		tokens[i] = strings.Trim(t, tokenPunctuation)
	}

	var forms []string
	seen := make(map[string]bool)
	for _, t := range tokens {
		if knownForms[t] && !seen[t] {
			seen[t] = true
			forms = append(forms, t)
		}
	}

	switch {
	case len(forms) == 0:
		return m.resolveSpecialCase(q, domain)
	case len(forms) > 1:
		m.emit(q, ReportMultipleForms, SeverityError, "multiple forms named: "+strings.Join(forms, ", "), nil)
		return models.SpeciesEntry{}, false
	}

	form := forms[0]
	var candidates []indexedEntry
	for _, c := range m.scope(q, domain, idx, 0) {
		if c.form == form {
			candidates = append(candidates, c)
		}
	}

	switch len(candidates) {
	case 0:
		m.emit(q, ReportNoFormMatch, SeverityWarn, "no entry with form "+form, nil)
		return models.SpeciesEntry{}, false
	case 1:
		return candidates[0].entry, true
	}

	// Forms shared across species (or evolution stages) need the remaining
	// words to narrow it down
	var remaining []string
	for _, t := range tokens {
		if t != form && t != "" {
			remaining = append(remaining, t)
		}
	}
	var narrowed []indexedEntry
	for _, c := range candidates {
		all := true
		for _, t := range remaining {
			if !m.containsWord(c.matchName, t) {
				all = false
				break
			}
		}
		if all {
			narrowed = append(narrowed, c)
		}
	}
	if len(narrowed) == 1 {
		return narrowed[0].entry, true
	}

	m.emit(q, ReportAmbiguousForm, SeverityError, "form "+form+" shared by several entries", idsOf(candidates))
	return models.SpeciesEntry{}, false
}

func (m *SpeciesMatcher) resolveSpecialCase(q lineQuery, domain models.Domain) (models.SpeciesEntry, bool) {
	targetID, ok := speciesSpecialCases[q.text]
	if !ok {
		m.emit(q, ReportUnmappedSpecialCase, SeverityWarn, "no base name or known form in text", nil)
		return models.SpeciesEntry{}, false
	}
	target, ok := m.catalog.Get(targetID)
	if !ok {
		m.emit(q, ReportNoFormMatch, SeverityWarn, "special case target "+targetID+" missing from catalog", nil)
		return models.SpeciesEntry{}, false
	}
	if !q.shadow && !q.mega {
		return target, true
	}

	// Shadow/mega special cases resolve to the flagged variant of the same form
	targetForm := formOf(StripDecorations(DiacriticFold(target.Name)))
	var matches []indexedEntry
	for _, c := range m.scope(q, domain, nil, target.Dex) {
		if c.form == targetForm {
			matches = append(matches, c)
		}
	}
	if len(matches) == 1 {
		return matches[0].entry, true
	}
	if len(matches) == 0 && q.mega {
		m.emit(q, ReportNoMegaCoverage, SeverityInfo, "no mega variant of "+targetID+" in catalog", nil)
		return models.SpeciesEntry{}, false
	}
	m.emit(q, ReportNoFormMatch, SeverityWarn, "no unique flagged variant of "+targetID, idsOf(matches))
	return models.SpeciesEntry{}, false
}

// pickMegaXY chooses between Mega X and Mega Y by the trailing token
func pickMegaXY(text string, candidates []indexedEntry) (models.SpeciesEntry, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return models.SpeciesEntry{}, false
	}
	letter := fields[len(fields)-1]
	if letter != "x" && letter != "y" {
		return models.SpeciesEntry{}, false
	}
	var found []models.SpeciesEntry
	for _, c := range candidates {
		if strings.HasSuffix(c.matchName, " "+letter) || strings.HasSuffix(c.entry.ID, "_"+letter) {
			found = append(found, c.entry)
		}
	}
	if len(found) != 1 {
		return models.SpeciesEntry{}, false
	}
	return found[0], true
}

// longestForms keeps the hits with the longest form so "galarian zen" wins
// over "galarian" when both are present in the text
func longestForms(hits []indexedEntry) []indexedEntry {
	if len(hits) < 2 {
		return hits
	}
	longest := 0
	for _, h := range hits {
		if len(h.form) > longest {
			longest = len(h.form)
		}
	}
	var out []indexedEntry
	for _, h := range hits {
		if len(h.form) == longest {
			out = append(out, h)
		}
	}
	return out
}

// containsWord reports whether phrase occurs in text bounded by non-alphanumerics
func (m *SpeciesMatcher) containsWord(text, phrase string) bool {
	if !strings.Contains(text, phrase) {
		return false
	}
	re, ok := m.patterns.Get(phrase)
	if !ok {
		re = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(phrase) + `(?:$|[^\p{L}\p{N}])`)
		m.patterns.Add(phrase, re)
	}
	return re.MatchString(text)
}

func (m *SpeciesMatcher) emit(q lineQuery, kind ReportKind, severity Severity, detail string, candidates []string) {
	metrics.SpeciesReportsTotal.WithLabelValues(string(kind), string(severity)).Inc()
	if m.report == nil {
		return
	}
	m.report(ResolutionReport{
		Line:       q.raw,
		Normalized: q.text,
		Kind:       kind,
		Severity:   severity,
		Detail:     detail,
		Candidates: candidates,
	})
}

func idsOf(entries []indexedEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.entry.ID)
	}
	return ids
}
