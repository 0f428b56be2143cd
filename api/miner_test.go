package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha_miner/internal/auth"
	"alpha_miner/internal/constant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/", handler)
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(recorder, req)
	return recorder
}

// withBrainServer points loginBrain at a scripted Brain backend for the
// duration of one test.
func withBrainServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == constant.AuthUri {
			w.WriteHeader(http.StatusCreated)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	previous := loginBrain
	loginBrain = func() (*auth.Session, error) {
		return auth.Login(server.URL, 5*time.Second, "test@example.com", "secret")
	}
	t.Cleanup(func() { loginBrain = previous })
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func TestCheckSimulationMissingAlphaId(t *testing.T) {
	recorder := postJSON(CheckSimulation, `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp ErrorResp
	decodeBody(t, recorder, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing alpha_id", resp.Error)
}

func TestCheckSimulationReturnsStatusAndPerformance(t *testing.T) {
	withBrainServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"AB123","status":"COMPLETE","is":{"sharpe":1.8,"fitness":1.2,"longCount":200,"shortCount":180}}`)
	})

	recorder := postJSON(CheckSimulation, `{"alpha_id":"AB123"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp CheckSimulationResp
	decodeBody(t, recorder, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "COMPLETE", resp.Status)
	require.NotNil(t, resp.Performance.Sharpe)
	assert.Equal(t, 1.8, *resp.Performance.Sharpe)
	require.NotNil(t, resp.Performance.LongCount)
	assert.Equal(t, int64(200), *resp.Performance.LongCount)
}

func TestCheckSimulationFetchFailure(t *testing.T) {
	withBrainServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	recorder := postJSON(CheckSimulation, `{"alpha_id":"AB123"}`)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp ErrorResp
	decodeBody(t, recorder, &resp)
	assert.Equal(t, "Failed to fetch alpha details", resp.Error)
}

func TestGenerateAlphaUnknownProvider(t *testing.T) {
	recorder := postJSON(GenerateAlpha, `{"provider":"anthropic","dataset":"fundamental6"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGenerateAlphaExtractsExpression(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"`+
			"```"+`\nrank(ts_decay_linear(close, 10))\n`+"```"+`"}}]}`)
	}))
	defer llmServer.Close()

	body := fmt.Sprintf(`{"provider":"ollama","model":"llama3","api_base_url":"%s","dataset":"fundamental6"}`, llmServer.URL)
	recorder := postJSON(GenerateAlpha, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp GenerateAlphaResp
	decodeBody(t, recorder, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "rank(ts_decay_linear(close, 10))", resp.Expression)
	assert.Equal(t, "fundamental6", resp.Parameters.Dataset)
	assert.Equal(t, "EQUITY", resp.Parameters.Instrument)
	assert.Equal(t, "USA", resp.Parameters.Region)
	assert.Equal(t, "momentum", resp.Parameters.StrategyType)
}

func TestBacktestMissingExpression(t *testing.T) {
	recorder := postJSON(Backtest, `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp ErrorResp
	decodeBody(t, recorder, &resp)
	assert.Equal(t, "Missing expression", resp.Error)
}

func TestBacktestCreatesAndSimulates(t *testing.T) {
	var created map[string]interface{}
	withBrainServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == constant.AlphasUri:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"NEW01"}`)
		case r.Method == http.MethodPost && r.URL.Path == constant.AlphasUri+"/NEW01":
			fmt.Fprint(w, `{"id":"SIM01"}`)
		default:
			// background status polls land here
			fmt.Fprint(w, `{"id":"NEW01","status":"COMPLETE"}`)
		}
	})

	recorder := postJSON(Backtest, `{"expression":"rank(close)","delay":0,"decay":4}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp BacktestResp
	decodeBody(t, recorder, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "NEW01", resp.AlphaId)
	assert.Equal(t, "SIM01", resp.SimulationId)

	settings, ok := created["settings"].(map[string]interface{})
	require.True(t, ok)
	// explicit zero delay must not be replaced by the default
	assert.Equal(t, float64(0), settings["delay"])
	assert.Equal(t, "TOP3000", settings["universe"])
	assert.Equal(t, "SUBINDUSTRY", settings["neutralization"])
	assert.Equal(t, "FASTEXPR", settings["language"])
}

func TestOptimizeAlphaReturnsExpression(t *testing.T) {
	var prompt string
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var chat struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&chat))
		prompt = chat.Messages[0].Content
		fmt.Fprint(w, `{"choices":[{"message":{"content":"rank(ts_decay_linear(close, 5))"}}]}`)
	}))
	defer llmServer.Close()

	body := fmt.Sprintf(`{"provider":"ollama","api_base_url":"%s","expression":"rank(close)","performance":{"sharpe":0.9,"turnover":0.5}}`, llmServer.URL)
	recorder := postJSON(OptimizeAlpha, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp OptimizeAlphaResp
	decodeBody(t, recorder, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "rank(ts_decay_linear(close, 5))", resp.OptimizedExpression)
	assert.Contains(t, prompt, "Original Alpha: rank(close)")
	assert.Contains(t, prompt, "- Low Sharpe ratio")
	assert.Contains(t, prompt, "- High turnover")
}

func TestGetResourcesLoginFailure(t *testing.T) {
	previous := loginBrain
	loginBrain = func() (*auth.Session, error) {
		return nil, fmt.Errorf("username and password are required, check user_config.json")
	}
	defer func() { loginBrain = previous }()

	recorder := postJSON(GetResources, `{}`)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp ErrorResp
	decodeBody(t, recorder, &resp)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "username and password")
}

func TestGetResourcesAggregates(t *testing.T) {
	withBrainServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constant.DataSetsUri:
			fmt.Fprint(w, `{"count":1,"results":[{"id":"fundamental6"}]}`)
		case constant.UserSelfUri:
			fmt.Fprint(w, `{"username":"quant42","powerPoolEligible":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	recorder := postJSON(GetResources, `{}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp GetResourcesResp
	decodeBody(t, recorder, &resp)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Resources.Datasets)
	assert.Equal(t, "quant42", resp.Resources.UserProfile.Username)
	assert.True(t, resp.Resources.UserProfile.CanSubmitPowerPool)
	assert.Contains(t, resp.Resources.Instruments, "EQUITY")
}
