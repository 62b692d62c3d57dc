package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email         string         `gorm:"column:email" json:"email"`
	Role          string         `gorm:"column:role" json:"role"`
	Industry      string         `gorm:"column:industry" json:"industry"`
	SkillLevel    string         `gorm:"column:skill_level" json:"skill_level"`
	TechStack     datatypes.JSON `gorm:"column:tech_stack" json:"tech_stack,omitempty"`
	LearningStyle string         `gorm:"column:learning_style" json:"learning_style"`
	Preferences   datatypes.JSON `gorm:"column:preferences" json:"preferences,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
