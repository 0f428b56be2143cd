package repo

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"alpha_miner/internal/model"
)

type BacktestRepo struct {
}

func NewBacktestRepo() *BacktestRepo {
	return &BacktestRepo{}
}

func (backtestRepo *BacktestRepo) Add(_ context.Context, backtest *model.Backtest) (int64, error) {
	result := getDb().Create(backtest)
	if result.Error != nil {
		log.Errorf("failed to add backtest: %v", result.Error)
		return -1, result.Error
	}
	return backtest.ID, nil
}

func (backtestRepo *BacktestRepo) UpdateFieldsByAlphaCode(_ context.Context, alphaCode string, fields map[string]interface{}) error {
	result := getDb().Model(&model.Backtest{}).Where("alpha_code = ?", alphaCode).Updates(fields)
	if result.Error != nil {
		log.Errorf("UpdateFields for Backtest %s Error: %v", alphaCode, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		err := fmt.Errorf("UpdateFields for Backtest %s had no effect or record not found", alphaCode)
		log.Error(err.Error())
		return err
	}
	return nil
}
