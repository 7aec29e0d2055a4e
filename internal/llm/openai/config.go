package openai

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/llm"
)

// Config for an OpenAI-compatible chat/completions endpoint. Local servers
// such as Ollama or llama.cpp work without an API key.
type Config struct {
	APIKey       string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL      string        // default https://api.openai.com/v1
	Model        string        // e.g., "gpt-4o-mini"
	Temperature  float32       // 0..2
	Timeout      time.Duration // http client timeout
	SystemPrompt string        // default llm.BuildSystemPrompt()
	MaxHistory   int           // prior user/assistant messages replayed per prompt
}

// Client is a chat session. It remembers the conversation so follow-up
// utterances keep their context, and is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	history []chatMessage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewClient returns a session against cfg.BaseURL. A remote endpoint without
// an API key is reported as common.ErrModelUnavailable.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = llm.BuildSystemPrompt()
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 20
	}
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return nil, common.ModelUnavailableError("invalid model base url "+cfg.BaseURL, err)
	}
	if cfg.APIKey == "" && !isLocalHost(u.Hostname()) {
		return nil, common.ModelUnavailableError("no API key configured for "+u.Host, nil)
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

func isLocalHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1", "host.docker.internal":
		return true
	}
	return false
}
