package history

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-marketplace-be/pkg/llm"
)

const (
	// collapseThreshold is the stored-message count above which the history
	// gets collapsed.
	collapseThreshold = 10

	// keepRecent is how many of the newest turns survive a collapse verbatim.
	keepRecent = 5
)

// Turn is one stored conversation message in collapse order.
type Turn struct {
	Role    string
	Content string
}

// Summarizer folds old conversation turns into a rolling one-paragraph
// summary so the prompt context stays bounded.
type Summarizer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewSummarizer(llmProvider llm.LLMProvider, logger *log.Logger) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Collapse returns the new summary and the turns to keep. It is a no-op at
// or below the threshold, which makes repeated calls idempotent. A failed
// summarization call keeps the full history untouched.
func (s *Summarizer) Collapse(ctx context.Context, priorSummary string, turns []Turn) (string, []Turn, bool) {
	if len(turns) <= collapseThreshold {
		return priorSummary, turns, false
	}

	cut := len(turns) - keepRecent
	prompt := buildSummaryPrompt(priorSummary, turns[:cut])

	summary, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		s.logger.Printf("[WARN] history summarization failed, keeping full history: %v", err)
		return priorSummary, turns, false
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		s.logger.Printf("[WARN] history summarization returned empty text, keeping full history")
		return priorSummary, turns, false
	}

	s.logger.Printf("[HISTORY] collapsed %d turns into summary, kept %d", cut, keepRecent)
	return summary, turns[cut:], true
}

func buildSummaryPrompt(priorSummary string, older []Turn) string {
	var prompt strings.Builder

	prompt.WriteString("Summarize this shopping conversation into ONE short paragraph.\n")
	prompt.WriteString("Keep: the rooms being worked on, product categories and brands discussed, ")
	prompt.WriteString("budget constraints, and what was already recommended.\n")
	prompt.WriteString("Drop: greetings and filler. Return only the paragraph.\n\n")

	if priorSummary != "" {
		prompt.WriteString("Earlier summary (fold it in):\n")
		prompt.WriteString(priorSummary)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("Conversation:\n")
	for _, t := range older {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", t.Role, t.Content))
	}

	return prompt.String()
}
