// Package assist generates listing descriptions through the Gemini API.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3-flash-preview"
	serviceName    = "assist"
)

// Language selects the prompt template.
type Language string

const (
	English Language = "en"
	Nepali  Language = "np"
)

// ParseLanguage maps anything other than "np" to English.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(Nepali)) {
		return Nepali
	}
	return English
}

// Prompt builds the request text for title.
func Prompt(title string, lang Language) string {
	if lang == Nepali {
		return fmt.Sprintf("तपाईं एक विशेषज्ञ कपीराइटर हो। शीर्षक: \"%s\" को आकर्षक विवरण लेख्नुहोस्।", title)
	}
	return fmt.Sprintf("Detailed professional job/room description for \"%s\".", title)
}

// Config for the Gemini client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the generateContent endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Describe returns generated description text for title. Any failure is an
// ASSIST_UNAVAILABLE error; callers keep whatever the user typed.
func (c *Client) Describe(ctx context.Context, title string, lang Language) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("Title is required to generate a description")
	}

	ctx, span := observability.GetTraceLayer().TraceExternalCall(ctx, serviceName, "generateContent")
	span.SetAttributes(attribute.String("assist.language", string(lang)))

	text, err := c.generate(ctx, Prompt(title, lang))
	observability.ObserveExternalCall(serviceName, err)
	observability.EndSpan(span, err)
	if err != nil {
		return "", models.NewUpstreamError(models.CodeAssistUnavailable, "Description assistant is unavailable", err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("assist api key missing")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http %d", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	text := strings.TrimSpace(body.text())
	if text == "" {
		return "", fmt.Errorf("gemini response empty")
	}
	return text, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
