package model

import (
	"time"

	"gorm.io/datatypes"
)

// Backtest corresponds to the `backtest` table in the database.
// Stores what was sent for simulation and how it came back.
type Backtest struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AlphaCode   string         `gorm:"column:alpha_code;type:varchar(64);not null;index" json:"alpha_code"`
	Expression  string         `gorm:"column:expression;type:longtext;not null" json:"expression"`
	Settings    datatypes.JSON `gorm:"column:settings;type:json" json:"settings"`
	Status      string         `gorm:"column:status;type:varchar(32)" json:"status"`
	Performance datatypes.JSON `gorm:"column:performance;type:json" json:"performance"` //  is 子记录
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Backtest) TableName() string {
	return "backtest"
}
