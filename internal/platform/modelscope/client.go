package modelscope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/deepstudy/deepstudy-backend/internal/platform/envutil"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// Client is the completion capability consumed by the intent router and the
// answer strategies. ModelScope exposes an OpenAI-compatible chat API, so
// the wire format below is the standard chat/completions shape.
type Client interface {
	// Complete sends a single prompt with no system message.
	Complete(ctx context.Context, prompt string) (string, error)

	// GenerateText sends a system + user message pair.
	GenerateText(ctx context.Context, system string, user string) (string, error)

	// Model reports the model id this client targets.
	Model() string
}

// WithModel returns a client that uses the provided model for its calls.
// If model is empty or base is nil, it returns the base client unchanged.
func WithModel(base Client, model string) Client {
	model = strings.TrimSpace(model)
	if base == nil || model == "" {
		return base
	}
	if c, ok := base.(*client); ok {
		return c.cloneWithModel(model)
	}
	return base
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	temp       float64
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("MODELSCOPE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing MODELSCOPE_API_KEY")
	}

	baseURL := envutil.String("MODELSCOPE_BASE_URL", "https://api-inference.modelscope.cn")
	baseURL = strings.TrimRight(baseURL, "/")
	model := envutil.String("MODELSCOPE_MODEL", "Qwen/Qwen2.5-72B-Instruct")
	timeoutSec := envutil.Int("MODELSCOPE_TIMEOUT_SECONDS", 120)
	maxRetries := envutil.Int("MODELSCOPE_MAX_RETRIES", 3)
	temp := envutil.Float("MODELSCOPE_TEMPERATURE", 0.2)

	return &client{
		log:        log.With("client", "ModelScope"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
		temp:       temp,
	}, nil
}

func (c *client) cloneWithModel(model string) *client {
	cp := *c
	cp.model = model
	cp.log = c.log.With("model", model)
	return &cp
}

func (c *client) Model() string { return c.model }

func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})
	return c.chat(ctx, msgs)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *client) chat(ctx context.Context, msgs []chatMessage) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temp,
	})
	if err != nil {
		return "", fmt.Errorf("modelscope: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, retryable, err := c.doChat(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.log.Warn("completion call failed, retrying", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (c *client) doChat(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("modelscope: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("modelscope: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", true, fmt.Errorf("modelscope: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("modelscope: status %d: %s", resp.StatusCode, truncateErr(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("modelscope: status %d: %s", resp.StatusCode, truncateErr(raw))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", false, fmt.Errorf("modelscope: decode response: %w", err)
	}
	if out.Error != nil {
		return "", false, fmt.Errorf("modelscope: api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", false, fmt.Errorf("modelscope: empty choices")
	}
	return out.Choices[0].Message.Content, false, nil
}

func truncateErr(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
