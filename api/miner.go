package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"alpha_miner/internal/auth"
	"alpha_miner/internal/brain"
	"alpha_miner/internal/llm"
	"alpha_miner/internal/resource"
	"alpha_miner/internal/viewer"
	"alpha_miner/internal/worker"
)

// loginBrain is swapped out in tests.
var loginBrain = auth.LoginFromConfig

var resourceFetcher = resource.NewFetcher()

func Hello(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, "Hello")
}

func failResp(ctx *gin.Context, code int, message string) {
	ctx.JSON(code, ErrorResp{Success: false, Error: message})
}

// GetResources returns datasets, operators and the user's submission flags.
func GetResources(ctx *gin.Context) {
	session, err := loginBrain()
	if err != nil {
		log.Errorf("GetResources login Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	resources := resourceFetcher.Fetch(brain.NewClient(session))
	ctx.JSON(http.StatusOK, GetResourcesResp{
		Success:   true,
		Resources: resources,
	})
}

// GenerateAlpha prompts the configured LLM for a fresh expression.
func GenerateAlpha(ctx *gin.Context) {
	req := GenerateAlphaReq{}
	if err := ctx.ShouldBind(&req); err != nil {
		log.Error(err.Error())
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.Instrument == "" {
		req.Instrument = "EQUITY"
	}
	if req.Region == "" {
		req.Region = "USA"
	}
	if req.StrategyType == "" {
		req.StrategyType = "momentum"
	}

	if _, _, err := llm.Endpoint(orDefaultProvider(req.Provider), req.ApiBaseUrl); err != nil {
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}

	prompt := llm.BuildGeneratePrompt(llm.GenerateParams{
		Dataset:      req.Dataset,
		Instrument:   req.Instrument,
		Region:       req.Region,
		Delay:        orDefaultDelay(req.Delay),
		StrategyType: req.StrategyType,
	})

	client := llm.NewClient(req.Provider, req.Model, req.ApiKey, req.ApiBaseUrl)
	content, err := client.Complete(prompt)
	if err != nil {
		log.Errorf("GenerateAlpha Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, GenerateAlphaResp{
		Success:    true,
		Expression: llm.ExtractExpression(content, "your"),
		Parameters: req,
	})
}

// Backtest creates the alpha, starts its simulation and schedules a
// background poll for the result.
func Backtest(ctx *gin.Context) {
	req := BacktestReq{}
	if err := ctx.ShouldBind(&req); err != nil {
		log.Error(err.Error())
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.Expression == "" {
		failResp(ctx, http.StatusBadRequest, "Missing expression")
		return
	}

	session, err := loginBrain()
	if err != nil {
		log.Errorf("Backtest login Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	client := brain.NewClient(session)

	settings := simulationSettings(req)
	alphaId, err := client.CreateAlpha(req.Expression, "", settings)
	if err != nil {
		log.Errorf("CreateAlpha Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, "Failed to create alpha: "+err.Error())
		return
	}

	simulationId, err := client.Simulate(alphaId)
	if err != nil {
		log.Errorf("Simulate Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, "Failed to backtest: "+err.Error())
		return
	}

	if pool := worker.GetPool(); pool != nil {
		expression := req.Expression
		if err := pool.Submit(func() {
			worker.PollSimulation(client, alphaId, expression, settings)
		}); err != nil {
			log.Errorf("schedule simulation poll Failed {%s}", err.Error())
		}
	}

	ctx.JSON(http.StatusOK, BacktestResp{
		Success:      true,
		AlphaId:      alphaId,
		SimulationId: simulationId,
		Message:      "Alpha submitted for backtesting",
	})
}

// OptimizeAlpha asks the LLM for an improved expression given the measured
// performance.
func OptimizeAlpha(ctx *gin.Context) {
	req := OptimizeAlphaReq{}
	if err := ctx.ShouldBind(&req); err != nil {
		log.Error(err.Error())
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if _, _, err := llm.Endpoint(orDefaultProvider(req.Provider), req.ApiBaseUrl); err != nil {
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}

	prompt := llm.BuildOptimizePrompt(llm.OptimizeParams{
		Expression: req.Expression,
		Fitness:    req.Performance.Fitness,
		Sharpe:     req.Performance.Sharpe,
		Turnover:   req.Performance.Turnover,
		Returns:    req.Performance.Returns,
	})

	client := llm.NewClient(req.Provider, req.Model, req.ApiKey, req.ApiBaseUrl)
	content, err := client.Complete(prompt)
	if err != nil {
		log.Errorf("OptimizeAlpha Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, OptimizeAlphaResp{
		Success:             true,
		OptimizedExpression: llm.ExtractExpression(content, "optimized"),
	})
}

// CheckSimulation projects status and the performance sub-fields of an alpha.
func CheckSimulation(ctx *gin.Context) {
	req := CheckSimulationReq{}
	if err := ctx.ShouldBind(&req); err != nil {
		log.Error(err.Error())
		failResp(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.AlphaId == "" {
		failResp(ctx, http.StatusBadRequest, "Missing alpha_id")
		return
	}

	session, err := loginBrain()
	if err != nil {
		log.Errorf("CheckSimulation login Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	alpha, err := brain.NewClient(session).GetAlpha(req.AlphaId)
	if err != nil {
		log.Errorf("CheckSimulation Failed {%s}", err.Error())
		failResp(ctx, http.StatusInternalServerError, "Failed to fetch alpha details")
		return
	}

	ctx.JSON(http.StatusOK, CheckSimulationResp{
		Success:     true,
		Status:      alpha.Status,
		Performance: alpha.Is,
	})
}

func orDefaultProvider(provider string) string {
	if provider == "" {
		return llm.ProviderOllama
	}
	return provider
}

// orDefaultDelay distinguishes an absent delay (default 1) from an explicit 0.
func orDefaultDelay(delay *int64) int64 {
	if delay == nil {
		return 1
	}
	return *delay
}

func simulationSettings(req BacktestReq) viewer.SimulationSettings {
	settings := viewer.SimulationSettings{
		InstrumentType: req.Instrument,
		Region:         req.Region,
		Universe:       req.Universe,
		Delay:          orDefaultDelay(req.Delay),
		Decay:          req.Decay,
		Neutralization: req.Neutralization,
		Truncation:     0.08,
		Pasteurization: "ON",
		UnitHandling:   "VERIFY",
		NanHandling:    "OFF",
		Language:       "FASTEXPR",
		Visualization:  false,
	}
	if settings.InstrumentType == "" {
		settings.InstrumentType = "EQUITY"
	}
	if settings.Region == "" {
		settings.Region = "USA"
	}
	if settings.Universe == "" {
		settings.Universe = "TOP3000"
	}
	if settings.Neutralization == "" {
		settings.Neutralization = "SUBINDUSTRY"
	}
	return settings
}
