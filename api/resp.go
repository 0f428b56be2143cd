package api

import (
	"alpha_miner/internal/viewer"
)

type ErrorResp struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type GetResourcesResp struct {
	Success   bool             `json:"success"`
	Resources viewer.Resources `json:"resources"`
}

type GenerateAlphaResp struct {
	Success    bool             `json:"success"`
	Expression string           `json:"expression"`
	Parameters GenerateAlphaReq `json:"parameters"`
}

type BacktestResp struct {
	Success      bool   `json:"success"`
	AlphaId      string `json:"alpha_id"`
	SimulationId string `json:"simulation_id"`
	Message      string `json:"message"`
}

type OptimizeAlphaResp struct {
	Success             bool   `json:"success"`
	OptimizedExpression string `json:"optimized_expression"`
}

type CheckSimulationResp struct {
	Success     bool               `json:"success"`
	Status      string             `json:"status"`
	Performance viewer.Performance `json:"performance"`
}
