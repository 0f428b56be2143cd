package worker

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"alpha_miner/configs"
	"alpha_miner/internal/brain"
	"alpha_miner/internal/constant"
	"alpha_miner/internal/model"
	"alpha_miner/internal/repo"
	"alpha_miner/internal/viewer"
)

// PollSimulation re-reads an alpha until its status settles (or the attempt
// budget runs out) and, when the history store is enabled, records the final
// expression/settings/performance.
func PollSimulation(client *brain.Client, alphaId string, expression string, settings viewer.SimulationSettings) {
	conf := configs.GetGlobalConfig().SubmitConfig
	interval := time.Duration(conf.PollIntervalSecond) * time.Second

	var alpha *viewer.Alpha
	var err error
	for attempt := int64(0); attempt < conf.PollMaxAttempts; attempt++ {
		alpha, err = client.GetAlpha(alphaId)
		if err != nil {
			log.Errorf("poll alpha %s Failed {%s}", alphaId, err.Error())
			return
		}
		if alpha.Status != constant.StatusPending {
			break
		}
		time.Sleep(interval)
	}
	if alpha == nil {
		return
	}
	log.Infof("alpha %s simulation settled with status %s", alphaId, alpha.Status)

	if !repo.Enabled() {
		return
	}

	settingsJson, err := json.Marshal(settings)
	if err != nil {
		log.Errorf("marshal settings Failed {%s}", err.Error())
	}
	performanceJson, err := json.Marshal(alpha.Is)
	if err != nil {
		log.Errorf("marshal performance Failed {%s}", err.Error())
	}

	backtestRepo := repo.NewBacktestRepo()
	if _, err = backtestRepo.Add(context.Background(), &model.Backtest{
		AlphaCode:   alphaId,
		Expression:  expression,
		Settings:    datatypes.JSON(settingsJson),
		Status:      alpha.Status,
		Performance: datatypes.JSON(performanceJson),
	}); err != nil {
		log.Errorf("store backtest Failed {%s}", err.Error())
	}
}
