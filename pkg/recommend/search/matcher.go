package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"ai-marketplace-be/pkg/recommend"
	"ai-marketplace-be/pkg/recommend/requirement"

	"github.com/google/uuid"
)

const (
	// MaxResults caps the ranked candidate list returned to the generator.
	MaxResults = 8

	// strategyLimit bounds each individual catalog lookup.
	strategyLimit = 12
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"for": true, "with": true, "want": true, "need": true, "like": true,
	"some": true, "have": true, "get": true, "would": true, "could": true,
	"please": true, "about": true, "into": true, "onto": true, "that": true,
	"this": true, "them": true, "then": true, "what": true, "which": true,
	"looking": true, "give": true, "show": true, "find": true,
}

// Matcher runs several independent search strategies over the catalog,
// unions the results, and ranks them. This is not a fallback chain: every
// strategy with non-empty input runs, and a failing strategy degrades to an
// empty partial result instead of aborting the match.
type Matcher struct {
	catalog recommend.Catalog
	logger  *log.Logger
}

func NewMatcher(catalog recommend.Catalog, logger *log.Logger) *Matcher {
	return &Matcher{
		catalog: catalog,
		logger:  logger,
	}
}

type strategy struct {
	name  string
	query recommend.CatalogQuery
}

// Match returns a deduplicated, ranked candidate list capped at MaxResults.
func (m *Matcher) Match(ctx context.Context, req recommend.RequirementSet, userMessage string) []recommend.Candidate {
	strategies := m.buildStrategies(req, userMessage)
	if len(strategies) == 0 {
		return nil
	}

	// All strategies run concurrently; results keep strategy order so that
	// ranking ties preserve a deterministic arrival order.
	results := make([][]recommend.Candidate, len(strategies))
	var wg sync.WaitGroup
	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s strategy) {
			defer wg.Done()
			found, err := m.catalog.Search(ctx, s.query)
			if err != nil {
				// Absorbed: a failing sub-search must not abort the others.
				m.logger.Printf("[WARN] search strategy %s failed: %v", s.name, err)
				return
			}
			results[i] = found
		}(i, s)
	}
	wg.Wait()

	merged := dedupe(results)
	ranked := Rank(merged, req)
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}
	return ranked
}

func (m *Matcher) buildStrategies(req recommend.RequirementSet, userMessage string) []strategy {
	var strategies []strategy

	// 1. Full-text search over the meaningful words of the raw message.
	if words := MeaningfulWords(userMessage); len(words) > 0 {
		strategies = append(strategies, strategy{
			name:  "message_keywords",
			query: recommend.CatalogQuery{Keyword: strings.Join(words, " "), Limit: strategyLimit},
		})
	}

	// 2. Category keyword search.
	if req.Category != "" {
		strategies = append(strategies, strategy{
			name:  "category",
			query: recommend.CatalogQuery{Category: req.Category, Limit: strategyLimit},
		})
	}

	// 3. Brand search.
	if req.Brand != "" {
		strategies = append(strategies, strategy{
			name:  "brand",
			query: recommend.CatalogQuery{Brand: req.Brand, Limit: strategyLimit},
		})
	}

	// 4. Combined keyword search: roomType + category + preferences.
	if combined := combinedKeywords(req); combined != "" {
		strategies = append(strategies, strategy{
			name:  "combined_keywords",
			query: recommend.CatalogQuery{Keyword: combined, Limit: strategyLimit},
		})
	}

	// 5. Dedicated room-type search.
	if req.RoomType != "" {
		strategies = append(strategies, strategy{
			name:  "room_type",
			query: recommend.CatalogQuery{Keyword: req.RoomType, Limit: strategyLimit},
		})
	}

	// 6. One search per literal room-type string in the message
	// (multi-room messages).
	for _, rt := range requirement.ScanRoomTypes(userMessage) {
		if rt == req.RoomType {
			continue // already covered by strategy 5
		}
		strategies = append(strategies, strategy{
			name:  "room_literal_" + strings.ReplaceAll(rt, " ", "_"),
			query: recommend.CatalogQuery{Keyword: rt, Limit: strategyLimit},
		})
	}

	return strategies
}

func combinedKeywords(req recommend.RequirementSet) string {
	parts := make([]string, 0, 2+len(req.Preferences))
	if req.RoomType != "" {
		parts = append(parts, req.RoomType)
	}
	if req.Category != "" {
		parts = append(parts, req.Category)
	}
	parts = append(parts, req.Preferences...)
	if len(parts) < 2 {
		// A single term adds nothing over strategies 2/5.
		return ""
	}
	return strings.Join(parts, " ")
}

// dedupe unions strategy results keyed by candidate id. The first arrival
// fixes the position; a later duplicate overwrites the value in place
// (last-writer-wins, no semantic merge).
func dedupe(results [][]recommend.Candidate) []recommend.Candidate {
	var merged []recommend.Candidate
	position := make(map[uuid.UUID]int)

	for _, batch := range results {
		for _, c := range batch {
			if pos, seen := position[c.ID]; seen {
				merged[pos] = c
				continue
			}
			position[c.ID] = len(merged)
			merged = append(merged, c)
		}
	}
	return merged
}

// Rank orders candidates by descending score. It is a pure function of the
// requirement set and candidate fields; ties keep arrival order.
func Rank(candidates []recommend.Candidate, req recommend.RequirementSet) []recommend.Candidate {
	ranked := make([]recommend.Candidate, len(candidates))
	copy(ranked, candidates)

	scores := make(map[uuid.UUID]int, len(ranked))
	for _, c := range ranked {
		scores[c.ID] = Score(c, req)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}

// Score implements the ranking heuristic: +3 room-type match in
// name/description/category, +2 category match, +1 has at least one image.
func Score(c recommend.Candidate, req recommend.RequirementSet) int {
	score := 0
	if req.RoomType != "" {
		haystack := strings.ToLower(c.Name + " " + c.Description + " " + c.Category)
		if strings.Contains(haystack, strings.ToLower(req.RoomType)) {
			score += 3
		}
	}
	if req.Category != "" && strings.EqualFold(c.Category, req.Category) {
		score += 2
	}
	if len(c.Images) > 0 {
		score++
	}
	return score
}

// MeaningfulWords lowercases the message and drops stop words and words of
// two characters or fewer.
func MeaningfulWords(message string) []string {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	var words []string
	for _, w := range fields {
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}
