package services

import (
	"regexp"
	"strings"
)

// Node is the minimal view of a document tree the extractor needs.
// Leaves are nodes without children; only leaves carry text.
type Node interface {
	Tag() string
	Classes() []string
	Children() []Node
	Text() string
}

// CollectLeafText walks root depth-first and returns the trimmed text of every
// non-empty leaf, skipping any subtree for which skip returns true
func CollectLeafText(root Node, skip func(Node) bool) []string {
	var out []string
	var visit func(n Node)
	visit = func(n Node) {
		if n == nil || (skip != nil && skip(n)) {
			return
		}
		children := n.Children()
		if len(children) == 0 {
			if text := strings.Join(strings.Fields(n.Text()), " "); text != "" {
				out = append(out, text)
			}
			return
		}
		for _, c := range children {
			visit(c)
		}
	}
	visit(root)
	return out
}

// FindFirst returns the first node in depth-first order accepted by match
func FindFirst(root Node, match func(Node) bool) Node {
	if root == nil {
		return nil
	}
	if match(root) {
		return root
	}
	for _, c := range root.Children() {
		if found := FindFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// HasClass reports whether n carries the given class
func HasClass(n Node, class string) bool {
	for _, c := range n.Classes() {
		if strings.EqualFold(c, class) {
			return true
		}
	}
	return false
}

// IsHeadline marks section titles, which never hold item-list entries
func IsHeadline(n Node) bool {
	return HasClass(n, "headline")
}

// DefaultExtractBlacklist drops boilerplate that shows up around species lists
var DefaultExtractBlacklist = []string{
	"bonus", "candy", "stardust", "xp", "incense", "lure", "research",
	"ticket", "learn more", "click", "hatch", "km eggs", "available",
	"appear more", "more frequently", "featured attack", "event",
}

// DefaultExtractWhitelist keeps lines even when a blacklisted word appears
var DefaultExtractWhitelist = []string{"raids", "wearing", "costume"}

// defaultMaxWords separates list entries from prose
const defaultMaxWords = 10

var shinyHint = regexp.MustCompile(`(?i)if you(?:'|’)?re (?:very |extra )?lucky[^.]*shiny`)

// ExtractorConfig controls which leaf lines are kept as mentions
type ExtractorConfig struct {
	Blacklist []string
	Whitelist []string
	MaxWords  int
}

// TextExtractor turns a document subtree into species mention lines
type TextExtractor struct {
	blacklist []*regexp.Regexp
	whitelist []*regexp.Regexp
	maxWords  int
}

func NewTextExtractor(cfg ExtractorConfig) *TextExtractor {
	if cfg.Blacklist == nil {
		cfg.Blacklist = DefaultExtractBlacklist
	}
	if cfg.Whitelist == nil {
		cfg.Whitelist = DefaultExtractWhitelist
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = defaultMaxWords
	}
	return &TextExtractor{
		blacklist: keywordPatterns(cfg.Blacklist),
		whitelist: keywordPatterns(cfg.Whitelist),
		maxWords:  cfg.MaxWords,
	}
}

// Extract collects candidate lines under root. A trailing "*" marks a line
// shiny; an "if you're lucky ... shiny" phrase anywhere under root marks
// every line shiny.
func (e *TextExtractor) Extract(root Node) []Mention {
	if root == nil {
		return nil
	}
	batchShiny := shinyHint.MatchString(strings.Join(CollectLeafText(root, nil), " "))

	var mentions []Mention
	for _, line := range CollectLeafText(root, IsHeadline) {
		if !e.keep(line) {
			continue
		}
		shiny := strings.HasSuffix(line, "*")
		text := strings.TrimSpace(strings.TrimRight(line, "*"))
		if text == "" {
			continue
		}
		mentions = append(mentions, Mention{Text: text, Shiny: shiny || batchShiny})
	}
	return mentions
}

func (e *TextExtractor) keep(line string) bool {
	if len(strings.Fields(line)) > e.maxWords {
		return false
	}
	if matchesAny(line, e.whitelist) {
		return true
	}
	return !matchesAny(line, e.blacklist)
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// keywordPatterns compiles case-insensitive keywords that must start at a
// word boundary, so "xp" hits "5× XP" but not "Exploud"
func keywordPatterns(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(k)))
		}
	}
	return out
}
