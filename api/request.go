package api

type LLMReq struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	ApiKey     string `json:"api_key"`
	ApiBaseUrl string `json:"api_base_url"`
}

type GenerateAlphaReq struct {
	LLMReq
	Dataset      string `json:"dataset"`
	Instrument   string `json:"instrument"`
	Region       string `json:"region"`
	Delay        *int64 `json:"delay"`
	StrategyType string `json:"strategy_type"`
}

type BacktestReq struct {
	Expression     string `json:"expression"`
	Instrument     string `json:"instrument"`
	Region         string `json:"region"`
	Delay          *int64 `json:"delay"`
	Universe       string `json:"universe"`
	Neutralization string `json:"neutralization"`
	Decay          int64  `json:"decay"`
}

type PerformanceReq struct {
	Fitness  *float64 `json:"fitness"`
	Sharpe   *float64 `json:"sharpe"`
	Turnover *float64 `json:"turnover"`
	Returns  *float64 `json:"returns"`
}

type OptimizeAlphaReq struct {
	LLMReq
	Expression  string         `json:"expression"`
	Performance PerformanceReq `json:"performance"`
}

type CheckSimulationReq struct {
	AlphaId string `json:"alpha_id"`
}
