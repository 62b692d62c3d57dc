package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is an append-only event log. No uniqueness constraint: the same
// kind/item pair may repeat.
type Activity struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ActivityType string         `gorm:"column:activity_type;not null" json:"activity_type"`
	ItemID       string         `gorm:"column:item_id" json:"item_id,omitempty"`
	Details      datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }
