package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Favorite marks one catalog item for one user. ItemData is a denormalized
// snapshot of the item payload at favoriting time; the source catalog is
// external and may change or disappear.
type Favorite struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_favorite,unique" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ItemType  string         `gorm:"column:item_type;not null;index:idx_user_favorite,unique" json:"item_type"`
	ItemID    string         `gorm:"column:item_id;not null;index:idx_user_favorite,unique" json:"item_id"`
	ItemData  datatypes.JSON `gorm:"column:item_data" json:"item_data,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }
