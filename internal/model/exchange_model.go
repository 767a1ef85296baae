package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Exchange is the audit row written for every settled completion.
type Exchange struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId     *uuid.UUID     `gorm:"type:uuid;index"`
	Origin        string         `gorm:"type:varchar(20);not null;index"`
	Backend       string         `gorm:"type:varchar(20);not null"`
	Status        string         `gorm:"type:varchar(20);not null;index"`
	AssistantName string         `gorm:"type:varchar(100)"`
	Categories    datatypes.JSON `gorm:"type:jsonb"`
	UserMessage   string         `gorm:"type:text;not null"`
	Reply         string         `gorm:"type:text"`
	ErrorMessage  *string        `gorm:"type:text"`
	PromptDigest  string         `gorm:"type:varchar(64)"`
	DurationMs    int64          `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"default:now();not null;index"`
}

func (Exchange) TableName() string {
	return "exchanges"
}
