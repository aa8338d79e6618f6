package history

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"ai-marketplace-be/pkg/llm"
)

type stubProvider struct {
	reply string
	err   error

	prompts []string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (*llm.ChatResult, error) {
	return &llm.ChatResult{Content: s.reply}, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func makeTurns(n int) []Turn {
	turns := make([]Turn, n)
	for i := range turns {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		turns[i] = Turn{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return turns
}

func TestCollapseBelowThresholdIsNoOp(t *testing.T) {
	p := &stubProvider{reply: "should never be used"}
	s := NewSummarizer(p, testLogger())

	for _, n := range []int{0, 1, 5, collapseThreshold} {
		summary, kept, changed := s.Collapse(context.Background(), "prior", makeTurns(n))
		if changed {
			t.Errorf("Collapse with %d turns reported a change", n)
		}
		if summary != "prior" || len(kept) != n {
			t.Errorf("Collapse with %d turns altered state: summary=%q kept=%d", n, summary, len(kept))
		}
	}
	if len(p.prompts) != 0 {
		t.Errorf("no LLM call expected at or below threshold, saw %d", len(p.prompts))
	}
}

func TestCollapseAboveThreshold(t *testing.T) {
	p := &stubProvider{reply: "Shopper is redoing a kitchen on a budget."}
	s := NewSummarizer(p, testLogger())

	turns := makeTurns(12)
	summary, kept, changed := s.Collapse(context.Background(), "", turns)

	if !changed {
		t.Fatal("expected a collapse above the threshold")
	}
	if summary != "Shopper is redoing a kitchen on a budget." {
		t.Errorf("summary = %q", summary)
	}
	if len(kept) != keepRecent {
		t.Fatalf("kept %d turns, want %d", len(kept), keepRecent)
	}
	// The newest turns survive verbatim.
	if kept[0].Content != "turn 7" || kept[keepRecent-1].Content != "turn 11" {
		t.Errorf("wrong turns kept: first=%q last=%q", kept[0].Content, kept[keepRecent-1].Content)
	}
}

func TestCollapseIdempotent(t *testing.T) {
	p := &stubProvider{reply: "rolling summary"}
	s := NewSummarizer(p, testLogger())

	summary, kept, _ := s.Collapse(context.Background(), "", makeTurns(12))
	summary2, kept2, changed := s.Collapse(context.Background(), summary, kept)

	if changed {
		t.Error("second collapse on already-collapsed history must be a no-op")
	}
	if summary2 != summary || len(kept2) != len(kept) {
		t.Errorf("second collapse altered state: %q, %d turns", summary2, len(kept2))
	}
}

func TestCollapseFailureKeepsFullHistory(t *testing.T) {
	p := &stubProvider{err: fmt.Errorf("provider down")}
	s := NewSummarizer(p, testLogger())

	turns := makeTurns(15)
	summary, kept, changed := s.Collapse(context.Background(), "prior", turns)

	if changed {
		t.Error("failed summarization must not report a change")
	}
	if summary != "prior" || len(kept) != 15 {
		t.Errorf("failed summarization altered state: summary=%q kept=%d", summary, len(kept))
	}
}

func TestCollapseEmptyModelAnswerKeepsFullHistory(t *testing.T) {
	p := &stubProvider{reply: "  \n"}
	s := NewSummarizer(p, testLogger())

	_, kept, changed := s.Collapse(context.Background(), "", makeTurns(11))
	if changed || len(kept) != 11 {
		t.Errorf("blank summary must keep full history, changed=%v kept=%d", changed, len(kept))
	}
}

func TestCollapsePromptFoldsPriorSummary(t *testing.T) {
	p := &stubProvider{reply: "new summary"}
	s := NewSummarizer(p, testLogger())

	s.Collapse(context.Background(), "old rolling summary", makeTurns(12))

	if len(p.prompts) != 1 {
		t.Fatalf("expected one summarization call, got %d", len(p.prompts))
	}
	if !strings.Contains(p.prompts[0], "old rolling summary") {
		t.Error("prior summary missing from summarization prompt")
	}
	if !strings.Contains(p.prompts[0], "turn 0") || strings.Contains(p.prompts[0], "turn 7") {
		t.Error("prompt should contain the collapsed turns only")
	}
}
