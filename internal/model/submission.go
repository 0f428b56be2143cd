package model

import (
	"time"

	"gorm.io/datatypes"
)

// Submission corresponds to the `submission` table in the database.
// One row per terminal submit outcome.
type Submission struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AlphaCode string         `gorm:"column:alpha_code;type:varchar(64);not null;index" json:"alpha_code"`
	Outcome   string         `gorm:"column:outcome;type:varchar(32);not null" json:"outcome"`
	Reasons   datatypes.JSON `gorm:"column:reasons;type:json" json:"reasons"` //  失败的检查项
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Submission) TableName() string {
	return "submission"
}
