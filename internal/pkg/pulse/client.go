// internal/pkg/pulse/client.go
package pulse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/blackbox-gh/storefront-backend/internal/config"
)

// Fallback replies returned when the model cannot be reached
const (
	DiagnosisFallback = "Diagnostic offline. Manual inspection required."
	DiagnosisDefault  = "Diagnostic complete. Hardware failure suspected."
	ChatFallback      = "Pulse synchronization error. Visit our branch at KNUST."
	ChatDefault       = "I'm Pulse. How can I assist with your hardware?"
)

const (
	diagnosisInstruction = "You are Pulse AI. Provide extremely concise, professional technical diagnoses for Black Box engineers. DO NOT use conversational filler. GO STRAIGHT TO THE POINT. Identify the likely failing component and estimated repair complexity in 2 sentences max."
	chatInstruction      = "You are 'Pulse', the official AI assistant for Black Box, Kumasi. You are elite, minimalist, and direct. Answer questions about tech sales and repairs briefly. No small talk. Keep responses under 50 words."
)

// Message is a single turn of an assistant conversation.
// Role is "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Gemini generateContent API structures
type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client talks to the Gemini generateContent API
type Client struct {
	config *config.Config
	client *http.Client
	log    *logrus.Logger
}

// NewClient creates a new Pulse client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Pulse.RequestTimeout},
		log:    log,
	}
}

// Diagnose produces a short technical verdict for a device issue.
// It never fails hard: transport or API errors resolve to a fixed
// offline message so intake can always proceed.
func (c *Client) Diagnose(ctx context.Context, device, issue, imageBase64 string) string {
	parts := []part{{Text: fmt.Sprintf("Device: %s. Issue: %s. Provide a direct technical verdict.", device, issue)}}

	model := c.config.Pulse.TextModel
	if imageBase64 != "" {
		model = c.config.Pulse.VisionModel
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: "image/jpeg",
			Data:     stripDataURL(imageBase64),
		}})
	}

	req := &generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: diagnosisInstruction}}},
		Contents:          []content{{Role: "user", Parts: parts}},
	}

	text, err := c.generate(ctx, model, req)
	if err != nil {
		c.log.WithError(err).Warn("Pulse diagnosis unavailable")
		return DiagnosisFallback
	}
	if text == "" {
		return DiagnosisDefault
	}
	return text
}

// Converse answers a chat prompt with the prior conversation replayed.
// Like Diagnose, failures resolve to a fixed reply.
func (c *Client) Converse(ctx context.Context, history []Message, prompt string) string {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	req := &generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: chatInstruction}}},
		Contents:          contents,
	}

	text, err := c.generate(ctx, c.config.Pulse.VisionModel, req)
	if err != nil {
		c.log.WithError(err).Warn("Pulse chat unavailable")
		return ChatFallback
	}
	if text == "" {
		return ChatDefault
	}
	return text
}

func (c *Client) generate(ctx context.Context, model string, reqData *generateRequest) (string, error) {
	if c.config.Pulse.APIKey == "" {
		return "", fmt.Errorf("Pulse API key not configured")
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.config.Pulse.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.Pulse.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generateContent returned status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// stripDataURL drops a data URL prefix, if present, leaving raw base64
func stripDataURL(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		return s[i+1:]
	}
	return s
}
