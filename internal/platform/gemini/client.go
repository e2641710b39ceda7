package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/studyforge-backend/internal/platform/envutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// NoResponseText is returned when the model answers without any text part.
const NoResponseText = "No response generated"

// Client is the generative-language gateway used by the rest of the backend.
// One call is one POST; nothing is retried.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIKey:  envutil.String("GEMINI_API_KEY", ""),
		Model:   envutil.String("GEMINI_MODEL", "gemini-2.0-flash"),
		Timeout: time.Duration(envutil.Int("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	return NewClientWithConfig(log, ConfigFromEnv(), nil)
}

// NewClientWithConfig builds a client from cfg. A nil httpClient gets one with cfg.Timeout.
func NewClientWithConfig(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &client{
		log:        log.With("service", "GeminiClient"),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: httpClient,
	}, nil
}

// HTTPError is returned for any non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Gemini API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *client) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("github.com/yungbote/studyforge-backend/gemini").Start(ctx, "gemini.GenerateText")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", c.model), attribute.Int("gemini.prompt_chars", len(prompt)))

	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	start := time.Now()
	raw, err := c.doOnce(ctx, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gemini request failed")
		c.log.WithContext(ctx).Warn("Gemini request failed",
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return "", err
	}
	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("gemini decode error: %w", err)
	}
	c.log.WithContext(ctx).Debug("Gemini request completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return extractText(resp), nil
}

func extractText(resp generateResponse) string {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return NoResponseText
	}
	if text := resp.Candidates[0].Content.Parts[0].Text; text != "" {
		return text
	}
	return NoResponseText
}

func (c *client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", c.baseURL, url.PathEscape(c.model), q.Encode())
}

func (c *client) doOnce(ctx context.Context, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
