package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SavedPrompt struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_prompt,unique" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PromptID    string         `gorm:"column:prompt_id;not null;index:idx_user_prompt,unique" json:"prompt_id"`
	PromptData  datatypes.JSON `gorm:"column:prompt_data" json:"prompt_data,omitempty"`
	CustomNotes string         `gorm:"column:custom_notes" json:"custom_notes,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

func (SavedPrompt) TableName() string { return "saved_prompts" }
