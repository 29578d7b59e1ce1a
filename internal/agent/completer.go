package agent

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/retry"
)

// Completer is one LLM round-trip: a system+user prompt in, raw text out.
// Implementations do not retry; retry policy lives in the Agent wrapper.
type Completer interface {
  Complete(ctx context.Context, system, user string) (string, error)
}

type ClientConfig struct {
  BaseURL string
  APIKey  string
  Model   string
  Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
  log        *logger.Logger
  cfg        ClientConfig
  httpClient *http.Client
}

func NewClient(baseLog *logger.Logger, cfg ClientConfig) (*Client, error) {
  if cfg.APIKey == "" {
    return nil, fmt.Errorf("missing model API key")
  }
  if cfg.BaseURL == "" {
    cfg.BaseURL = "https://api.openai.com"
  }
  if cfg.Model == "" {
    cfg.Model = "gpt-4o-mini"
  }
  if cfg.Timeout <= 0 {
    cfg.Timeout = 180 * time.Second
  }
  return &Client{
    log:        baseLog.With("service", "ModelClient"),
    cfg:        cfg,
    httpClient: &http.Client{Timeout: cfg.Timeout},
  }, nil
}

type chatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type chatRequest struct {
  Model       string        `json:"model"`
  Messages    []chatMessage `json:"messages"`
  Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
  body := chatRequest{
    Model: c.cfg.Model,
    Messages: []chatMessage{
      {Role: "system", Content: system},
      {Role: "user", Content: user},
    },
    Temperature: 0.2,
  }

  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return "", err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", &buf)
  if err != nil {
    return "", err
  }
  req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return "", err
  }
  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return "", readErr
  }
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return "", &retry.HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }

  var parsed chatResponse
  if err := json.Unmarshal(raw, &parsed); err != nil {
    return "", fmt.Errorf("decode completion response: %w", err)
  }
  if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
    return "", fmt.Errorf("completion response contained no content")
  }
  return parsed.Choices[0].Message.Content, nil
}
