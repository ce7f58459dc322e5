package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ChatMessage is one turn inside a conversation's message log.
// RAGContext holds the retrieved-context suffix attached to a user message
// after a successful retrieval, so later turns replay it without re-querying.
type ChatMessage struct {
	ID          string       `json:"id"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	RAGContext  string       `json:"rag_context,omitempty"`
	MediaType   string       `json:"media_type,omitempty"`
	MediaData   []string     `json:"media_data,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

type Attachment struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	TextContext string `json:"text_context,omitempty"`
}

type Conversation struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"size:256;not null" json:"title"`
	Messages  datatypes.JSON `gorm:"type:jsonb" json:"messages"`
	IsPinned  bool           `gorm:"not null;default:false" json:"is_pinned"`
	ProjectID *string        `gorm:"type:uuid;index" json:"project_id"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DecodeMessages returns the parsed message log; empty on parse error.
func (c *Conversation) DecodeMessages() []ChatMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	var messages []ChatMessage
	_ = json.Unmarshal(c.Messages, &messages)
	return messages
}

// SetMessages stores the message log as JSON.
func (c *Conversation) SetMessages(messages []ChatMessage) error {
	if messages == nil {
		messages = []ChatMessage{}
	}
	b, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	c.Messages = datatypes.JSON(b)
	return nil
}
