package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointPerProvider(t *testing.T) {
	url, needAuth, err := Endpoint(ProviderOllama, "http://localhost:11434/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1/chat/completions", url)
	assert.False(t, needAuth)

	url, needAuth, err = Endpoint(ProviderDeepseek, "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepseek.com/chat/completions", url)
	assert.True(t, needAuth)

	url, needAuth, err = Endpoint(ProviderOpenAI, "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", url)
	assert.True(t, needAuth)

	url, _, err = Endpoint(ProviderOpenAI, "https://proxy.example.com/v1")
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/v1/chat/completions", url)

	_, _, err = Endpoint("anthropic", "")
	assert.Error(t, err)
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  rank(close)  "}}]}`)
	}))
	defer server.Close()

	client := NewClient(ProviderOllama, "llama3", "", server.URL)
	content, err := client.Complete("generate an alpha")
	require.NoError(t, err)
	assert.Equal(t, "rank(close)", content)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "llama3", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, 500, captured.MaxTokens)
}

func TestCompleteBearerTokenForOpenAI(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"rank(close)"}}]}`)
	}))
	defer server.Close()

	client := NewClient(ProviderOpenAI, "gpt-4o-mini", "sk-test", server.URL)
	_, err := client.Complete("generate an alpha")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestCompleteNon200IsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"bad key"}`)
	}))
	defer server.Close()

	client := NewClient(ProviderOllama, "llama3", "", server.URL)
	_, err := client.Complete("generate an alpha")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient(ProviderOllama, "llama3", "", server.URL)
	_, err := client.Complete("generate an alpha")
	assert.Error(t, err)
}

func TestExtractExpression(t *testing.T) {
	cases := []struct {
		name         string
		content      string
		rejectPrefix string
		want         string
	}{
		{
			name:    "fenced block",
			content: "```\nrank(ts_decay_linear(close, 10))\n```",
			want:    "rank(ts_decay_linear(close, 10))",
		},
		{
			name:    "inline backticks",
			content: "`rank(close)`",
			want:    "rank(close)",
		},
		{
			name:    "skips comment lines",
			content: "# momentum signal\nrank(close / ts_mean(close, 20))",
			want:    "rank(close / ts_mean(close, 20))",
		},
		{
			name:         "skips chatty preamble",
			content:      "Your alpha expression is below\nrank(close)",
			rejectPrefix: "your",
			want:         "rank(close)",
		},
		{
			name:         "no qualifying line returns cleaned text",
			content:      "```\nYour alpha:\n```",
			rejectPrefix: "your",
			want:         "Your alpha:",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractExpression(tc.content, tc.rejectPrefix))
		})
	}
}

func TestBuildGeneratePromptEmbedsParams(t *testing.T) {
	prompt := BuildGeneratePrompt(GenerateParams{
		Dataset:      "fundamental6",
		Instrument:   "EQUITY",
		Region:       "USA",
		Delay:        1,
		StrategyType: "momentum",
	})

	assert.Contains(t, prompt, "Dataset: fundamental6")
	assert.Contains(t, prompt, "Region: USA")
	assert.Contains(t, prompt, "Delay: 1")
	assert.Contains(t, prompt, "fundamental6_field1")
	assert.Contains(t, prompt, "momentum strategy")
}

func TestBuildOptimizePromptThresholds(t *testing.T) {
	sharpe := 0.9
	turnover := 0.45
	fitness := 0.7

	prompt := BuildOptimizePrompt(OptimizeParams{
		Expression: "rank(close)",
		Sharpe:     &sharpe,
		Turnover:   &turnover,
		Fitness:    &fitness,
	})

	assert.Contains(t, prompt, "Original Alpha: rank(close)")
	assert.Contains(t, prompt, "- Low Sharpe ratio")
	assert.Contains(t, prompt, "- High turnover")
	assert.Contains(t, prompt, "- Low fitness")
	assert.Contains(t, prompt, "- Returns: N/A")
}

func TestBuildOptimizePromptHealthyMetrics(t *testing.T) {
	sharpe := 2.1
	turnover := 0.15
	fitness := 1.8

	prompt := BuildOptimizePrompt(OptimizeParams{
		Expression: "rank(close)",
		Sharpe:     &sharpe,
		Turnover:   &turnover,
		Fitness:    &fitness,
	})

	for _, problem := range []string{"Low Sharpe", "High turnover", "Low fitness"} {
		assert.False(t, strings.Contains(prompt, problem), "unexpected problem line: %s", problem)
	}
}
