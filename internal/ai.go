package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultModel = "gemini-1.5-flash"

	summaryMaxTokens = 150
	replyMaxTokens   = 500

	// replyPlaceholder stands in when the model returns nothing usable,
	// so the caller always has at least one suggestion to show.
	replyPlaceholder = "I apologize, but I was unable to generate reply suggestions."
)

// ModelService produces a summary and reply suggestions for an inbound
// message given its conversation context.
type ModelService interface {
	Analyze(ctx context.Context, message, conversationContext string) (*AIResult, error)
}

// GeminiService implements ModelService against the Gemini REST API.
type GeminiService struct {
	client   *http.Client
	settings func() Settings
	baseURL  string
}

// NewGeminiService creates a service reading live settings from the
// given accessor on every request, so key or model changes apply
// without a restart.
func NewGeminiService(settings func() Settings) *GeminiService {
	return &GeminiService{
		client:   &http.Client{Timeout: 60 * time.Second},
		settings: settings,
		baseURL:  geminiBaseURL,
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze runs the two-step flow: summarize the inbound message, then
// propose three reply options grounded in the conversation context.
func (g *GeminiService) Analyze(ctx context.Context, message, conversationContext string) (*AIResult, error) {
	settings := g.settings()
	if !settings.AIEnabled {
		return nil, &ModelError{Msg: "assistance is disabled in settings"}
	}
	if settings.APIKey == "" {
		return nil, &ModelError{Msg: "no API key configured"}
	}

	summary, err := g.generate(ctx, settings, summaryPrompt(message), summaryMaxTokens)
	if err != nil {
		return nil, err
	}

	rawReplies, err := g.generate(ctx, settings, replyPrompt(message, conversationContext), replyMaxTokens)
	if err != nil {
		return nil, err
	}

	return &AIResult{
		Summary:      strings.TrimSpace(summary),
		ReplyOptions: splitReplies(rawReplies),
	}, nil
}

func summaryPrompt(message string) string {
	return fmt.Sprintf(
		"Summarize this buyer message from a freelancing platform in 1-2 short sentences. "+
			"Focus on what the buyer wants and any deadlines or constraints.\n\nMessage: %s",
		message)
}

func replyPrompt(message, conversationContext string) string {
	var b strings.Builder
	b.WriteString("You are helping a freelancer reply to a buyer on a freelancing platform. ")
	b.WriteString("Write exactly 3 professional reply options, separated by \"|||\". ")
	b.WriteString("Keep each reply concise, friendly, and actionable.\n\n")
	if conversationContext != "" {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", conversationContext)
	}
	fmt.Fprintf(&b, "Latest buyer message: %s", message)
	return b.String()
}

func (g *GeminiService) generate(ctx context.Context, settings Settings, prompt string, maxTokens int) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: maxTokens,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ModelError{Msg: "encode request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, settings.Model, settings.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &ModelError{Msg: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &ModelError{Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ModelError{Status: resp.StatusCode, Msg: "read response", Err: err}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ModelError{Status: resp.StatusCode, Msg: "decode response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		msg := "request rejected"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ModelError{Status: resp.StatusCode, Msg: msg}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// splitReplies parses the delimiter-separated reply options. A response
// with no usable options yields the placeholder.
func splitReplies(raw string) []string {
	var replies []string
	for _, part := range strings.Split(raw, "|||") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			replies = append(replies, trimmed)
		}
	}
	if len(replies) == 0 {
		return []string{replyPlaceholder}
	}
	return replies
}
