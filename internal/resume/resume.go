// Package resume extracts skill levels from free-form resume text by
// matching the catalog's keyword aliases.
package resume

import (
	"regexp"
	"sort"
	"strings"

	"github.com/abhisek/skillforge/internal/competency"
)

// Level heuristics on the 1-10 scale used for resume-derived levels.
const (
	BaseLevel       = 4
	MaxAliasLevel   = 8
	MaxBoostedLevel = 9
	MaxLevel        = 10

	// MaxTextLen bounds how much of a resume is scanned or sent to a model.
	MaxTextLen = 3000
)

var boostWords = map[string]bool{
	"senior":     true,
	"lead":       true,
	"expert":     true,
	"advanced":   true,
	"extensive":  true,
	"proficient": true,
	"strong":     true,
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

type matcher struct {
	skillID string
	aliases []*regexp.Regexp
}

// Parser matches resume text against a catalog. It is safe for
// concurrent use.
type Parser struct {
	matchers []matcher
}

// NewParser compiles alias matchers for every catalog skill that declares
// keywords.
func NewParser(cat *competency.Catalog) *Parser {
	p := &Parser{}
	for _, s := range cat.Skills() {
		if len(s.Keywords) == 0 {
			continue
		}
		m := matcher{skillID: s.ID}
		for _, k := range s.Keywords {
			m.aliases = append(m.aliases, aliasPattern(k))
		}
		p.matchers = append(p.matchers, m)
	}
	return p
}

// aliasPattern matches k as a whole term, so "js" does not match "json".
func aliasPattern(k string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(strings.ToLower(k)) + `(?:$|[^a-z0-9])`)
}

// Extract returns skill ID → estimated level (1-10) for every skill whose
// aliases appear in text. One alias gives BaseLevel, each further distinct
// alias adds one up to MaxAliasLevel, and a seniority word anywhere in the
// text adds one more up to MaxBoostedLevel.
func (p *Parser) Extract(text string) map[string]int {
	found := make(map[string]int)
	if strings.TrimSpace(text) == "" {
		return found
	}
	lower := strings.ToLower(Truncate(text))

	boost := false
	for _, w := range wordRe.FindAllString(lower, -1) {
		if boostWords[w] {
			boost = true
			break
		}
	}

	for _, m := range p.matchers {
		matched := 0
		for _, re := range m.aliases {
			if re.MatchString(lower) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		level := min(MaxAliasLevel, BaseLevel+matched-1)
		if boost {
			level = min(MaxBoostedLevel, level+1)
		}
		found[m.skillID] = level
	}
	return found
}

// Truncate limits text to MaxTextLen bytes on a rune boundary.
func Truncate(text string) string {
	if len(text) <= MaxTextLen {
		return text
	}
	cut := MaxTextLen
	for cut > 0 && !utf8RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Merge combines level maps taking the maximum per skill. Levels outside
// 1..MaxLevel are dropped.
func Merge(levels ...map[string]int) map[string]int {
	out := make(map[string]int)
	for _, m := range levels {
		for id, l := range m {
			if l < 1 || l > MaxLevel {
				continue
			}
			if l > out[id] {
				out[id] = l
			}
		}
	}
	return out
}

// SortedIDs returns the skill IDs of levels, highest level first, then by ID.
func SortedIDs(levels map[string]int) []string {
	ids := make([]string, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if levels[ids[i]] != levels[ids[j]] {
			return levels[ids[i]] > levels[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
