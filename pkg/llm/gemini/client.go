package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	APIKeyEnv    = "GEMINI_API_KEY"
)

var (
	ErrMissingAPIKey = errors.New("gemini api key is empty")
	ErrNoCandidates  = errors.New("no candidates returned by model")
	ErrEmptyResponse = errors.New("model returned no text")
)

// Client calls Gemini generateContent through the genai SDK.
type Client struct {
	// APIKey pins the key. When empty the key is read from GEMINI_API_KEY on
	// every call.
	APIKey string
	// BaseURL overrides the API host. Empty means the SDK default.
	BaseURL string
	Model   string
	httpDo  *http.Client
}

// New returns a client. A zero timeout means 60 seconds.
func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		httpDo:  &http.Client{Timeout: timeout},
	}
}

// ModelName implements llm.Named.
func (c *Client) ModelName() string { return c.Model }

func (c *Client) apiKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv(APIKeyEnv)
}

func (c *Client) client(ctx context.Context, key string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpDo,
	}
	if c.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = c.BaseURL + "/"
	}
	return genai.NewClient(ctx, cfg)
}

// Ask sends prompt as a single user turn with temperature 0 and returns the
// text of the first candidate. A candidate without text that did not finish
// with STOP is an error.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	key := c.apiKey()
	if key == "" {
		return "", ErrMissingAPIKey
	}
	gc, err := c.client(ctx, key)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	resp, err := gc.Models.GenerateContent(ctx, c.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", ErrNoCandidates
	}

	text := resp.Text()
	if reason := resp.Candidates[0].FinishReason; text == "" && reason != genai.FinishReasonStop {
		return "", fmt.Errorf("%w: finish reason %q", ErrEmptyResponse, reason)
	}
	return text, nil
}
