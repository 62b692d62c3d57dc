package types

import (
	"time"

	"github.com/google/uuid"
)

// UserStats holds the derived counters, exactly one row per user.
type UserStats struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User               *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TotalScore         int        `gorm:"column:total_score;not null;default:0" json:"total_score"`
	Level              int        `gorm:"column:level;not null;default:1" json:"level"`
	TutorialsCompleted int        `gorm:"column:tutorials_completed;not null;default:0" json:"tutorials_completed"`
	PromptsSaved       int        `gorm:"column:prompts_saved;not null;default:0" json:"prompts_saved"`
	ToolsFavorited     int        `gorm:"column:tools_favorited;not null;default:0" json:"tools_favorited"`
	CurrentStreak      int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak      int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	LastActivityDate   *time.Time `gorm:"column:last_activity_date" json:"last_activity_date,omitempty"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserStats) TableName() string { return "user_stats" }
