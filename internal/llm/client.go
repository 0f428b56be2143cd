package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
)

const (
	ProviderOllama   = "ollama"
	ProviderDeepseek = "deepseek"
	ProviderOpenAI   = "openai"
)

const (
	deepseekUrl      = "https://api.deepseek.com/chat/completions"
	defaultOpenAIUrl = "https://api.openai.com/v1/chat/completions"
)

// Endpoint resolves the chat-completions URL and whether a bearer token is
// attached for one of the three supported providers.
func Endpoint(provider, baseUrl string) (string, bool, error) {
	switch provider {
	case ProviderOllama:
		return strings.TrimRight(baseUrl, "/") + "/v1/chat/completions", false, nil
	case ProviderDeepseek:
		return deepseekUrl, true, nil
	case ProviderOpenAI:
		if baseUrl == "" {
			return defaultOpenAIUrl, true, nil
		}
		return strings.TrimRight(baseUrl, "/") + "/chat/completions", true, nil
	default:
		return "", false, fmt.Errorf("unknown provider: %s", provider)
	}
}

// APIError is a non-200 answer from a chat-completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AI API error: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	provider   string
	model      string
	apiKey     string
	baseUrl    string
}

// NewClient builds a chat-completion client. Empty arguments fall back to the
// configured defaults.
func NewClient(provider, model, apiKey, baseUrl string) *Client {
	conf := configs.GetGlobalConfig().LLMConfig
	if provider == "" {
		provider = conf.Provider
	}
	if model == "" {
		model = conf.Model
	}
	if apiKey == "" {
		apiKey = conf.ApiKey
	}
	if baseUrl == "" {
		baseUrl = conf.BaseUrl
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(conf.TimeoutSecond) * time.Second},
		provider:   provider,
		model:      model,
		apiKey:     apiKey,
		baseUrl:    baseUrl,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete submits one user prompt and returns the raw completion text.
func (c *Client) Complete(prompt string) (string, error) {
	apiUrl, needAuth, err := Endpoint(c.provider, c.baseUrl)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	req, err := http.NewRequest(http.MethodPost, apiUrl, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "new chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	if needAuth {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("chat request Failed {%s}", err.Error())
		return "", errors.Wrap(err, "send chat request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "parse chat response")
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// ExtractExpression pulls the first plausible expression line out of a
// completion: markdown fences stripped, empty lines, comment lines and lines
// starting with rejectPrefix skipped. When no line qualifies the cleaned text
// is returned whole.
func ExtractExpression(content, rejectPrefix string) string {
	cleaned := strings.ReplaceAll(content, "```", "")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = strings.TrimSpace(cleaned)

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rejectPrefix != "" && strings.HasPrefix(strings.ToLower(line), rejectPrefix) {
			continue
		}
		return line
	}
	return cleaned
}
