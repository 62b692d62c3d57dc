package types

import (
	"time"

	"github.com/google/uuid"
)

// Badge is a directly assigned achievement. Once granted it is never revoked.
type Badge struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BadgeID  string    `gorm:"column:badge_id;not null;index:idx_user_badge,unique" json:"badge_id"`
	EarnedAt time.Time `gorm:"column:earned_at;not null" json:"earned_at"`
}

func (Badge) TableName() string { return "badges" }
