package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// ChatTimestampLayout is the fixed-width stamp for chat message
// timestamps. Fractional seconds are zero-padded to nine digits so
// lexicographic order over the stored strings equals chronological
// order; variable-width layouts (RFC3339Nano trims trailing zeros)
// invert same-second stamps of different precision.
const ChatTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ChatMessage is one message in a conversation. Sessions are derived by
// grouping on SessionID; ContextData carries the intents detected for the
// message at ingest time.
type ChatMessage struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID   string         `gorm:"size:100;not null;index" json:"session_id"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	Sender      string         `gorm:"size:20;not null" json:"sender"`
	Timestamp   time.Time      `gorm:"not null;index" json:"timestamp"`
	ContextData datatypes.JSON `json:"context_data"`
}

func (ChatMessage) TableName() string { return "chat_history" }

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
