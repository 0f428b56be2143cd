package router

import (
	"github.com/gin-gonic/gin"

	"alpha_miner/api"
	"alpha_miner/configs"
	"alpha_miner/internal/auth"
)

func SetRouter() *gin.Engine {
	if configs.GetGlobalConfig().AppConfig.RunMod == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(auth.APIKeyAuthMiddleware())

	r.GET("/hello", api.Hello)

	apiGroup := r.Group("/api")
	apiGroup.POST("/get-resources", api.GetResources)
	apiGroup.POST("/generate-alpha", api.GenerateAlpha)
	apiGroup.POST("/backtest", api.Backtest)
	apiGroup.POST("/optimize-alpha", api.OptimizeAlpha)
	apiGroup.POST("/check-simulation", api.CheckSimulation)

	return r
}
