package extractor

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// GazetteerEntry maps a canonical term to the aliases it may appear under in
// queries, including cross-language spellings.
type GazetteerEntry struct {
	Canonical string   `toml:"canonical"`
	Aliases   []string `toml:"aliases"`
}

// Gazetteer is the lookup table the pattern strategy matches queries against
type Gazetteer struct {
	Countries   []GazetteerEntry `toml:"countries"`
	Commodities []GazetteerEntry `toml:"commodities"`
}

// weightPattern matches a number followed by a weight unit
var weightPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(kg|kilograms?|kilos?|tonnes?|tons?|mt)\b`)

type patternStrategy struct {
	countries   []gazetteerTerm
	commodities []gazetteerTerm
}

type gazetteerTerm struct {
	canonical string
	alias     string // lowercase form matched against the query
}

// NewPattern creates the deterministic fallback strategy. It only depends on
// the gazetteer and a weight expression, so it works when every external
// provider is down.
func NewPattern(gazetteer *Gazetteer) (Strategy, error) {
	if gazetteer == nil {
		return nil, goerr.New("gazetteer is required")
	}

	s := &patternStrategy{
		countries:   flattenGazetteer(gazetteer.Countries),
		commodities: flattenGazetteer(gazetteer.Commodities),
	}
	if len(s.countries) == 0 && len(s.commodities) == 0 {
		return nil, goerr.New("gazetteer is empty")
	}

	return s, nil
}

// flattenGazetteer expands entries into (canonical, alias) pairs sorted by
// alias length descending, so "aluminium ore" wins over "ore".
func flattenGazetteer(entries []GazetteerEntry) []gazetteerTerm {
	var terms []gazetteerTerm
	for _, e := range entries {
		canonical := strings.TrimSpace(e.Canonical)
		if canonical == "" {
			continue
		}
		terms = append(terms, gazetteerTerm{canonical: canonical, alias: strings.ToLower(canonical)})
		for _, alias := range e.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" {
				terms = append(terms, gazetteerTerm{canonical: canonical, alias: alias})
			}
		}
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i].alias) > len(terms[j].alias)
	})

	return terms
}

func (s *patternStrategy) Name() string {
	return "pattern"
}

func (s *patternStrategy) Extract(ctx context.Context, query string) (*model.ExtractedFacts, error) {
	facts := &model.ExtractedFacts{}
	lower := strings.ToLower(query)

	if term, ok := matchTerm(lower, s.commodities); ok {
		facts.SetProduct(term)
	}
	if term, ok := matchTerm(lower, s.countries); ok {
		facts.SetDestination(term)
	}
	if kg, ok := parseWeight(query); ok {
		facts.SetWeightKg(kg)
	}

	return facts, nil
}

// matchTerm finds the first gazetteer term whose alias occurs in the query as
// a whole word. Terms are pre-sorted longest-first.
func matchTerm(lowerQuery string, terms []gazetteerTerm) (string, bool) {
	for _, term := range terms {
		idx := strings.Index(lowerQuery, term.alias)
		for idx >= 0 {
			if isWordBoundary(lowerQuery, idx, len(term.alias)) {
				return term.canonical, true
			}
			next := strings.Index(lowerQuery[idx+1:], term.alias)
			if next < 0 {
				break
			}
			idx += 1 + next
		}
	}
	return "", false
}

func isWordBoundary(s string, start, length int) bool {
	if start > 0 && isWordChar(s[start-1]) {
		return false
	}
	end := start + length
	if end < len(s) && isWordChar(s[end]) {
		return false
	}
	return true
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// parseWeight finds the first weight expression in the query and normalizes
// it to kilograms.
func parseWeight(query string) (float64, bool) {
	m := weightPattern.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}

	value, err := parseWeightNumber(m[1])
	if err != nil {
		return 0, false
	}

	unit, err := types.ParseWeightUnit(m[2])
	if err != nil {
		return 0, false
	}

	return value * unit.Kilograms(), true
}

// parseWeightNumber handles "10.5", "10,000" and "10.000" (thousands
// separators in either orthography) and "10,5" (decimal comma). A lone
// separator followed by exactly three digits is read as a thousands
// separator, matching how Indonesian text writes "10.000 kg".
func parseWeightNumber(s string) (float64, error) {
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// "1,234.5": comma is the thousands separator
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		if allThousandsGroups(strings.Split(s, ",")) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// "10,5": decimal comma
			s = strings.ReplaceAll(s, ",", ".")
		}
	case strings.Contains(s, "."):
		if allThousandsGroups(strings.Split(s, ".")) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return strconv.ParseFloat(s, 64)
}

func allThousandsGroups(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
