package requirement

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"ai-marketplace-be/pkg/llm"
	"ai-marketplace-be/pkg/recommend"
)

// RoomTypes is the fixed vocabulary scanned as a deterministic fallback.
// The model is unreliable at this single field, so the raw message always
// gets re-scanned independently of the model's answer.
var RoomTypes = []string{
	"bedroom", "kitchen", "living room", "bathroom", "dining room",
	"office", "basement", "attic", "hallway", "entryway",
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Extractor turns a free-text user message into a RequirementSet via one
// LLM call. It never returns an error: any failure degrades to an empty set.
type Extractor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewExtractor(llmProvider llm.LLMProvider, logger *log.Logger) *Extractor {
	return &Extractor{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

const extractionPromptTemplate = `You analyze a shopper's message for a home improvement marketplace.

Return ONLY a JSON object with these keys (use null for unknown):
{"category": string|null, "brand": string|null, "budget": string|null, "roomType": string|null, "preferences": [string]}

- "category" is a product category such as "vinyl flooring", "tile", "hardwood".
- "brand" is a manufacturer name if the shopper mentions one.
- "budget" is any price constraint, verbatim.
- "roomType" is the room being worked on, e.g. "kitchen".
- "preferences" are style/material wishes, e.g. ["waterproof", "dark oak"].
%s
Shopper message: %s`

// Extract derives a RequirementSet from the latest user message and the
// prior conversation summary, if any.
func (e *Extractor) Extract(ctx context.Context, userMessage, priorSummary string) recommend.RequirementSet {
	summaryBlock := ""
	if priorSummary != "" {
		summaryBlock = fmt.Sprintf("\nConversation so far (summary): %s\n", priorSummary)
	}
	prompt := fmt.Sprintf(extractionPromptTemplate, summaryBlock, userMessage)

	var req recommend.RequirementSet
	raw, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		e.logger.Printf("[WARN] requirement extraction call failed: %v", err)
	} else {
		req = ParseRequirements(raw)
	}

	// Deterministic room-type fallback from the raw message.
	if req.RoomType == "" {
		req.RoomType = ScanRoomType(userMessage)
	}

	return req
}

// ParseRequirements tolerates the model wrapping the JSON object in prose or
// a fenced code block. Order: fenced block, first top-level {...} span, raw
// text. Any parse failure yields an empty set.
func ParseRequirements(raw string) recommend.RequirementSet {
	if m := fencedBlockRe.FindStringSubmatch(raw); len(m) == 2 {
		if req, ok := unmarshalRequirements(m[1]); ok {
			return req
		}
	}
	if span := firstBraceSpan(raw); span != "" {
		if req, ok := unmarshalRequirements(span); ok {
			return req
		}
	}
	if req, ok := unmarshalRequirements(raw); ok {
		return req
	}
	return recommend.RequirementSet{}
}

func unmarshalRequirements(s string) (recommend.RequirementSet, bool) {
	var payload struct {
		Category    *string  `json:"category"`
		Brand       *string  `json:"brand"`
		Budget      *string  `json:"budget"`
		RoomType    *string  `json:"roomType"`
		Preferences []string `json:"preferences"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &payload); err != nil {
		return recommend.RequirementSet{}, false
	}

	req := recommend.RequirementSet{
		Category: cleanField(payload.Category),
		Brand:    cleanField(payload.Brand),
		Budget:   cleanField(payload.Budget),
		RoomType: strings.ToLower(cleanField(payload.RoomType)),
	}
	for _, p := range payload.Preferences {
		if p = strings.TrimSpace(p); p != "" {
			req.Preferences = append(req.Preferences, p)
		}
	}
	return req, true
}

func cleanField(v *string) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(*v)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

// firstBraceSpan returns the first balanced top-level {...} span in s.
func firstBraceSpan(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ScanRoomType returns the first room-type string literally present in the
// message, or "".
func ScanRoomType(message string) string {
	lower := strings.ToLower(message)
	for _, rt := range RoomTypes {
		if strings.Contains(lower, rt) {
			return rt
		}
	}
	return ""
}

// ScanRoomTypes returns every room-type string literally present in the
// message, in vocabulary order. Covers multi-room messages.
func ScanRoomTypes(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, rt := range RoomTypes {
		if strings.Contains(lower, rt) {
			found = append(found, rt)
		}
	}
	return found
}
