package types

import (
	"time"

	"github.com/google/uuid"
)

type Progress struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_progress,unique" json:"user_id"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TutorialID      string     `gorm:"column:tutorial_id;not null;index:idx_user_progress,unique" json:"tutorial_id"`
	Completed       bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	ProgressPercent int        `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`
	StartedAt       time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (Progress) TableName() string { return "progress" }
