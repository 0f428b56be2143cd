package main

import (
	"fmt"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
	"alpha_miner/internal/worker"
	"alpha_miner/router"
)

func init() {
	// .env may carry LLM_API_KEY, absence is fine
	_ = godotenv.Load()
	configs.InitGlobalConfig()
}

func main() {

	config := configs.GetGlobalConfig()

	log.Infof("The service %s starting", config.AppConfig.AppName)

	pool := worker.GetPool()
	if pool != nil {
		defer pool.Release()
	}

	r := router.SetRouter()
	if err := r.Run(fmt.Sprintf(":%d", config.AppConfig.Port)); err != nil {
		log.Errorf("server run error: %v", err)
	}

}
