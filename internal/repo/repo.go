package repo

import (
	"sync"

	"gorm.io/gorm"

	"alpha_miner/configs"
	"alpha_miner/internal/pkg/gormcli"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// getDb opens the database lazily and only when the store is enabled.
// Returns nil when persistence is turned off.
func getDb() *gorm.DB {
	dbOnce.Do(func() {
		if configs.GetGlobalConfig().DbConfig.Enabled {
			db = gormcli.GetDb()
		}
	})
	return db
}

// Enabled reports whether the history store is available.
func Enabled() bool {
	return getDb() != nil
}
