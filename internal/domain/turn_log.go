package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TurnLog is the flat audit record of one submitted turn. The graph node is
// the durable record of the conversation; this table exists for auditing
// and offline analysis only.
type TurnLog struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	NodeID   string    `gorm:"not null;index;column:node_id" json:"node_id"`
	ParentID *string   `gorm:"column:parent_id;index" json:"parent_id,omitempty"`

	Query  string `gorm:"type:text;not null;column:query" json:"query"`
	Answer string `gorm:"type:text;not null;column:answer" json:"answer"`
	Intent string `gorm:"column:intent;index" json:"intent"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (TurnLog) TableName() string { return "turn_log" }
