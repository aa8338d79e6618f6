package generate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-marketplace-be/pkg/llm"
	"ai-marketplace-be/pkg/recommend"
	"ai-marketplace-be/pkg/recommend/sanitize"
)

const (
	// maxPromptCandidates bounds the structured product block in the prompt.
	maxPromptCandidates = 15

	searchToolName = "search_products"

	// maxImageBytes bounds the server-side fetch for inlined images.
	maxImageBytes = 4 << 20

	fallbackAnswer = "I couldn't put together specific product picks this time. " +
		"In general, start from the room's moisture level and foot traffic: waterproof vinyl or tile " +
		"for kitchens and bathrooms, engineered hardwood or laminate for living areas. " +
		"Tell me the room, your budget, and any style preference and I'll narrow it down."

	textOnlyNote = "\n\nNote: the shopper attached a room photo, but it could not be retrieved. " +
		"Answer from the text alone and mention that the photo was unavailable."
)

// SearchFunc runs one keyword search against the catalog on the model's
// behalf during the tool round.
type SearchFunc func(ctx context.Context, keyword string) ([]recommend.Candidate, error)

// Generator produces the final recommendation answer. It never returns an
// error: every failure path degrades to a usable text answer.
type Generator struct {
	llmProvider llm.LLMProvider
	search      SearchFunc
	sanitizer   *sanitize.Sanitizer
	httpClient  *http.Client
	logger      *log.Logger

	// visionModel overrides the provider's default model on turns that
	// carry an image. Empty means the default model handles vision too.
	visionModel string
}

func NewGenerator(llmProvider llm.LLMProvider, search SearchFunc, sanitizer *sanitize.Sanitizer, visionModel string, imageFetchTimeout time.Duration, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		search:      search,
		sanitizer:   sanitizer,
		httpClient:  &http.Client{Timeout: imageFetchTimeout},
		logger:      logger,
		visionModel: visionModel,
	}
}

// Generate builds the grounded prompt, runs at most one tool round, and
// returns a sanitized, non-empty answer.
func (g *Generator) Generate(
	ctx context.Context,
	userMessage string,
	req recommend.RequirementSet,
	candidates []recommend.Candidate,
	priorSummary string,
	imageURL string,
) string {
	prompt := g.buildPrompt(userMessage, req, candidates, priorSummary)
	message := llm.Message{Role: "user", Content: prompt}

	hasImage := false
	if imageURL != "" {
		att := g.resolveImage(ctx, imageURL)
		if att.note != "" {
			message.Content += att.note
		} else {
			message.ImageURL = att.url
			message.ImageB64 = att.b64
			message.ImageMIME = att.mime
			hasImage = true
		}
	}

	var opts []llm.Option
	if hasImage && g.visionModel != "" {
		opts = append(opts, llm.WithModel(g.visionModel))
	}

	result, err := g.llmProvider.ChatWithTools(ctx, []llm.Message{message}, g.tools(), opts...)
	if err != nil && hasImage {
		// The image is the most likely culprit; one text-only retry.
		g.logger.Printf("[WARN] generation with image failed, retrying text-only: %v", err)
		message.ImageURL, message.ImageB64, message.ImageMIME = "", "", ""
		message.Content += textOnlyNote
		result, err = g.llmProvider.ChatWithTools(ctx, []llm.Message{message}, g.tools())
	}
	if err != nil {
		g.logger.Printf("[WARN] generation failed: %v", err)
		return fallbackAnswer
	}

	answer := result.Content
	if len(result.ToolCalls) > 0 {
		answer = g.runToolRound(ctx, message, result)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		g.logger.Printf("[WARN] model returned an empty answer, using fallback")
		return fallbackAnswer
	}
	return g.sanitizer.Apply(answer)
}

// runToolRound executes the requested searches and re-invokes the model
// exactly once. Further tool requests are not honored.
func (g *Generator) runToolRound(ctx context.Context, userMessage llm.Message, first *llm.ChatResult) string {
	history := []llm.Message{
		userMessage,
		{Role: "assistant", Content: first.Content, ToolCalls: first.ToolCalls},
	}

	for _, call := range first.ToolCalls {
		history = append(history, llm.Message{
			Role:       "tool",
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    g.executeToolCall(ctx, call),
		})
	}

	answer, err := g.llmProvider.Chat(ctx, history)
	if err != nil {
		g.logger.Printf("[WARN] tool round follow-up failed: %v", err)
		return first.Content
	}
	return answer
}

func (g *Generator) executeToolCall(ctx context.Context, call llm.ToolCall) string {
	if call.Name != searchToolName {
		return fmt.Sprintf(`{"error": "unknown tool %s"}`, call.Name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Query == "" {
		g.logger.Printf("[WARN] unparseable tool arguments: %s", call.Arguments)
		return `{"error": "invalid query"}`
	}

	found, err := g.search(ctx, args.Query)
	if err != nil {
		g.logger.Printf("[WARN] tool search %q failed: %v", args.Query, err)
		return `{"products": []}`
	}
	if len(found) > maxPromptCandidates {
		found = found[:maxPromptCandidates]
	}

	payload, err := json.Marshal(map[string]interface{}{"products": found})
	if err != nil {
		return `{"products": []}`
	}
	return string(payload)
}

func (g *Generator) tools() []llm.Tool {
	return []llm.Tool{{
		Name:        searchToolName,
		Description: "Search the marketplace catalog for additional products by keyword.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Keywords to search for, e.g. 'waterproof vinyl plank'",
				},
			},
			"required": []string{"query"},
		},
	}}
}

func (g *Generator) buildPrompt(userMessage string, req recommend.RequirementSet, candidates []recommend.Candidate, priorSummary string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a product advisor for a home improvement marketplace.\n\n")

	if priorSummary != "" {
		prompt.WriteString("<conversation_summary>\n")
		prompt.WriteString(priorSummary)
		prompt.WriteString("\n</conversation_summary>\n\n")
	}

	if !req.IsEmpty() {
		prompt.WriteString("<shopper_requirements>\n")
		if req.Category != "" {
			prompt.WriteString(fmt.Sprintf("Category: %s\n", req.Category))
		}
		if req.Brand != "" {
			prompt.WriteString(fmt.Sprintf("Brand: %s\n", req.Brand))
		}
		if req.Budget != "" {
			prompt.WriteString(fmt.Sprintf("Budget: %s\n", req.Budget))
		}
		if req.RoomType != "" {
			prompt.WriteString(fmt.Sprintf("Room: %s\n", req.RoomType))
		}
		if len(req.Preferences) > 0 {
			prompt.WriteString(fmt.Sprintf("Preferences: %s\n", strings.Join(req.Preferences, ", ")))
		}
		prompt.WriteString("</shopper_requirements>\n\n")
	}

	if len(candidates) > maxPromptCandidates {
		candidates = candidates[:maxPromptCandidates]
	}
	if len(candidates) > 0 {
		prompt.WriteString("<matched_products>\n")
		for i, c := range candidates {
			prompt.WriteString(fmt.Sprintf("%d. %s | brand: %s | category: %s | price: $%.2f | id: %s\n",
				i+1, c.Name, c.Brand, c.Category, c.Price, c.ID))
			if c.Description != "" {
				prompt.WriteString(fmt.Sprintf("   %s\n", c.Description))
			}
			if len(c.Variations) > 0 {
				prompt.WriteString(fmt.Sprintf("   variations: %s\n", strings.Join(c.Variations, ", ")))
			}
		}
		prompt.WriteString("</matched_products>\n\n")
	} else {
		prompt.WriteString("<matched_products>\nNone found for this request.\n</matched_products>\n\n")
	}

	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("1. Recommend the best products from <matched_products> for the shopper's request.\n")
	prompt.WriteString("2. Rank your picks and explain in one or two sentences why each fits.\n")
	prompt.WriteString("3. Mention prices and variations when relevant.\n")
	prompt.WriteString("4. If the matched list is insufficient, you may call " + searchToolName + " once with better keywords.\n")
	prompt.WriteString("5. If a room photo is attached, take its style and colors into account.\n")
	prompt.WriteString("6. Never invent products or prices that are not in the data.\n")
	prompt.WriteString("</task_instructions>\n\n")

	prompt.WriteString("<shopper_message>\n")
	prompt.WriteString(userMessage)
	prompt.WriteString("\n</shopper_message>\n\n")

	prompt.WriteString("Answer:")
	return prompt.String()
}

type imageAttachment struct {
	url  string
	b64  string
	mime string
	note string
}

// resolveImage decides how the room photo travels to the model: by URL when
// the host serves it publicly, inlined as base64 when only this server can
// fetch it, or dropped with a note when neither works.
func (g *Generator) resolveImage(ctx context.Context, imageURL string) imageAttachment {
	if g.probeImage(ctx, imageURL) {
		return imageAttachment{url: imageURL}
	}

	b64, mime, err := g.fetchImage(ctx, imageURL)
	if err != nil {
		g.logger.Printf("[WARN] image %s unusable, continuing text-only: %v", imageURL, err)
		return imageAttachment{note: textOnlyNote}
	}
	return imageAttachment{b64: b64, mime: mime}
}

func (g *Generator) probeImage(ctx context.Context, imageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}

func (g *Generator) fetchImage(ctx context.Context, imageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}
	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		return "", "", fmt.Errorf("unexpected content type %q", mime)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", "", err
	}
	if len(data) > maxImageBytes {
		return "", "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return base64.StdEncoding.EncodeToString(data), mime, nil
}
