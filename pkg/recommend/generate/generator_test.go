package generate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ai-marketplace-be/pkg/llm"
	"ai-marketplace-be/pkg/recommend"
	"ai-marketplace-be/pkg/recommend/sanitize"

	"github.com/google/uuid"
)

type stubProvider struct {
	chatFn          func(history []llm.Message) (string, error)
	chatWithToolsFn func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error)

	chatCalls          int
	chatWithToolsCalls int
	toolCallOpts       []llm.Options
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.chatCalls++
	if s.chatFn == nil {
		return "", fmt.Errorf("unexpected Chat call")
	}
	return s.chatFn(history)
}

func (s *stubProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (*llm.ChatResult, error) {
	s.chatWithToolsCalls++
	var resolved llm.Options
	for _, opt := range opts {
		opt(&resolved)
	}
	s.toolCallOpts = append(s.toolCallOpts, resolved)
	if s.chatWithToolsFn == nil {
		return nil, fmt.Errorf("unexpected ChatWithTools call")
	}
	return s.chatWithToolsFn(history, tools)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", fmt.Errorf("unexpected Generate call")
}

func newTestGenerator(p llm.LLMProvider, search SearchFunc) *Generator {
	return NewGenerator(p, search, sanitize.NewSanitizer(sanitize.DefaultRules()),
		"", 2*time.Second, log.New(os.Stderr, "", 0))
}

func noSearch(ctx context.Context, keyword string) ([]recommend.Candidate, error) {
	return nil, nil
}

func TestGenerateSanitizesAnswer(t *testing.T) {
	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return &llm.ChatResult{Content: "Try the plank at www.example.com/p/1 today"}, nil
		},
	}
	g := newTestGenerator(p, noSearch)

	got := g.Generate(context.Background(), "vinyl for kitchen", recommend.RequirementSet{}, nil, "", "")
	if !strings.Contains(got, "https://www.example.com/p/1") {
		t.Errorf("answer not sanitized: %q", got)
	}
}

func TestGenerateFallbackOnProviderError(t *testing.T) {
	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return nil, fmt.Errorf("model overloaded")
		},
	}
	g := newTestGenerator(p, noSearch)

	got := g.Generate(context.Background(), "anything", recommend.RequirementSet{}, nil, "", "")
	if got != fallbackAnswer {
		t.Errorf("expected fallback answer, got %q", got)
	}
	if p.chatWithToolsCalls != 1 {
		t.Errorf("no image attached, so no retry expected; got %d calls", p.chatWithToolsCalls)
	}
}

func TestGenerateFallbackOnEmptyAnswer(t *testing.T) {
	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return &llm.ChatResult{Content: "   \n"}, nil
		},
	}
	g := newTestGenerator(p, noSearch)

	got := g.Generate(context.Background(), "anything", recommend.RequirementSet{}, nil, "", "")
	if got != fallbackAnswer {
		t.Errorf("blank model answer must yield fallback, got %q", got)
	}
}

func TestGenerateSingleToolRound(t *testing.T) {
	var searched []string
	search := func(ctx context.Context, keyword string) ([]recommend.Candidate, error) {
		searched = append(searched, keyword)
		return []recommend.Candidate{{ID: uuid.New(), Name: "Slate Look Tile"}}, nil
	}

	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return &llm.ChatResult{ToolCalls: []llm.ToolCall{{
				ID:        "call_1",
				Name:      searchToolName,
				Arguments: `{"query": "slate tile"}`,
			}}}, nil
		},
		chatFn: func(history []llm.Message) (string, error) {
			var toolMsg *llm.Message
			for i := range history {
				if history[i].Role == "tool" {
					toolMsg = &history[i]
				}
			}
			if toolMsg == nil {
				return "", fmt.Errorf("no tool output in history")
			}
			if !strings.Contains(toolMsg.Content, "Slate Look Tile") {
				return "", fmt.Errorf("tool output missing search results: %s", toolMsg.Content)
			}
			return "Based on the search, go with the Slate Look Tile.", nil
		},
	}
	g := newTestGenerator(p, search)

	got := g.Generate(context.Background(), "something slate-like", recommend.RequirementSet{}, nil, "", "")

	if len(searched) != 1 || searched[0] != "slate tile" {
		t.Errorf("search invocations = %v, want exactly [slate tile]", searched)
	}
	if p.chatWithToolsCalls != 1 || p.chatCalls != 1 {
		t.Errorf("want one tool-capable call and one follow-up, got %d/%d",
			p.chatWithToolsCalls, p.chatCalls)
	}
	if !strings.Contains(got, "Slate Look Tile") {
		t.Errorf("final answer should come from the follow-up, got %q", got)
	}
}

func TestGenerateToolRoundFollowUpFailureKeepsFirstContent(t *testing.T) {
	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return &llm.ChatResult{
				Content: "Partial picks before searching.",
				ToolCalls: []llm.ToolCall{{
					ID: "call_1", Name: searchToolName, Arguments: `{"query": "oak"}`,
				}},
			}, nil
		},
		chatFn: func(history []llm.Message) (string, error) {
			return "", fmt.Errorf("follow-up timed out")
		},
	}
	g := newTestGenerator(p, noSearch)

	got := g.Generate(context.Background(), "oak flooring", recommend.RequirementSet{}, nil, "", "")
	if got != "Partial picks before searching." {
		t.Errorf("expected first round content on follow-up failure, got %q", got)
	}
}

func TestExecuteToolCallBadArguments(t *testing.T) {
	g := newTestGenerator(&stubProvider{}, noSearch)

	got := g.executeToolCall(context.Background(), llm.ToolCall{
		Name: searchToolName, Arguments: "not json",
	})
	if !strings.Contains(got, "invalid query") {
		t.Errorf("bad arguments should yield an error payload, got %q", got)
	}
}

func TestExecuteToolCallSearchFailure(t *testing.T) {
	search := func(ctx context.Context, keyword string) ([]recommend.Candidate, error) {
		return nil, fmt.Errorf("catalog down")
	}
	g := newTestGenerator(&stubProvider{}, search)

	got := g.executeToolCall(context.Background(), llm.ToolCall{
		Name: searchToolName, Arguments: `{"query": "tile"}`,
	})
	if got != `{"products": []}` {
		t.Errorf("search failure should yield empty product list, got %q", got)
	}
}

func TestGenerateImageFailureRetriesTextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			if history[0].ImageURL != "" || history[0].ImageB64 != "" {
				return nil, fmt.Errorf("vision endpoint rejected the image")
			}
			return &llm.ChatResult{Content: "Here are picks without the photo."}, nil
		},
	}
	g := newTestGenerator(p, noSearch)

	got := g.Generate(context.Background(), "match my room", recommend.RequirementSet{}, nil, "", srv.URL+"/room.png")

	if p.chatWithToolsCalls != 2 {
		t.Fatalf("expected one retry after image failure, got %d calls", p.chatWithToolsCalls)
	}
	if got != "Here are picks without the photo." {
		t.Errorf("retry answer not used, got %q", got)
	}
}

func TestGenerateVisionModelOnlyOnImageTurns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer srv.Close()

	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			return &llm.ChatResult{Content: "Matching picks."}, nil
		},
	}
	g := NewGenerator(p, noSearch, sanitize.NewSanitizer(sanitize.DefaultRules()),
		"gpt-4o", 2*time.Second, log.New(os.Stderr, "", 0))

	g.Generate(context.Background(), "match my room", recommend.RequirementSet{}, nil, "", srv.URL+"/room.jpg")
	g.Generate(context.Background(), "just text", recommend.RequirementSet{}, nil, "", "")

	if len(p.toolCallOpts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(p.toolCallOpts))
	}
	if p.toolCallOpts[0].Model != "gpt-4o" {
		t.Errorf("image turn should use the vision model, got %q", p.toolCallOpts[0].Model)
	}
	if p.toolCallOpts[1].Model != "" {
		t.Errorf("text turn must keep the default model, got %q", p.toolCallOpts[1].Model)
	}
}

func TestGenerateTextOnlyRetryDropsVisionModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer srv.Close()

	p := &stubProvider{
		chatWithToolsFn: func(history []llm.Message, tools []llm.Tool) (*llm.ChatResult, error) {
			if history[0].ImageURL != "" {
				return nil, fmt.Errorf("vision endpoint down")
			}
			return &llm.ChatResult{Content: "Picks without the photo."}, nil
		},
	}
	g := NewGenerator(p, noSearch, sanitize.NewSanitizer(sanitize.DefaultRules()),
		"gpt-4o", 2*time.Second, log.New(os.Stderr, "", 0))

	g.Generate(context.Background(), "match my room", recommend.RequirementSet{}, nil, "", srv.URL+"/room.jpg")

	if len(p.toolCallOpts) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(p.toolCallOpts))
	}
	if p.toolCallOpts[1].Model != "" {
		t.Errorf("text-only retry must not carry the vision model, got %q", p.toolCallOpts[1].Model)
	}
}

func TestResolveImageProbeSuccessKeepsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer srv.Close()

	g := newTestGenerator(&stubProvider{}, noSearch)
	att := g.resolveImage(context.Background(), srv.URL+"/room.jpg")

	if att.url == "" || att.b64 != "" || att.note != "" {
		t.Errorf("probe success must pass the URL through, got %+v", att)
	}
}

func TestResolveImageInlinesWhenProbeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	g := newTestGenerator(&stubProvider{}, noSearch)
	att := g.resolveImage(context.Background(), srv.URL+"/room.png")

	if att.b64 == "" || att.mime != "image/png" {
		t.Errorf("expected inlined base64 image, got %+v", att)
	}
}

func TestResolveImageUnavailableYieldsNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := newTestGenerator(&stubProvider{}, noSearch)
	att := g.resolveImage(context.Background(), srv.URL+"/gone.png")

	if att.note == "" {
		t.Errorf("unfetchable image should degrade to a note, got %+v", att)
	}
}

func TestBuildPromptCapsCandidates(t *testing.T) {
	var candidates []recommend.Candidate
	for i := 0; i < maxPromptCandidates+5; i++ {
		candidates = append(candidates, recommend.Candidate{
			ID: uuid.New(), Name: fmt.Sprintf("Plank %d", i),
		})
	}

	g := newTestGenerator(&stubProvider{}, noSearch)
	prompt := g.buildPrompt("msg", recommend.RequirementSet{}, candidates, "")

	if !strings.Contains(prompt, fmt.Sprintf("%d. ", maxPromptCandidates)) {
		t.Errorf("prompt missing candidate %d", maxPromptCandidates)
	}
	if strings.Contains(prompt, fmt.Sprintf("%d. ", maxPromptCandidates+1)) {
		t.Errorf("prompt should cap at %d candidates", maxPromptCandidates)
	}
}
