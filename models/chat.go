package models

import (
	"time"
)

// ChatMessage is a direct message between two users. The log is append-only;
// the read flag only ever transitions false to true.
type ChatMessage struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"sender_id" gorm:"not null;index"`
	RecipientID uint       `json:"recipient_id" gorm:"not null;index"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	IsRead      bool       `json:"is_read" gorm:"default:false"`
	ReadAt      *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Sender    User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}
