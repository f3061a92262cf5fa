package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"azhome-server/models"
	ws "azhome-server/websocket"
)

// ChatService is the append-only message log between pairs of users. REST is
// the source of truth; the websocket hub is delivery-only.
type ChatService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewChatService(db *gorm.DB, hub *ws.Hub) *ChatService {
	return &ChatService{db: db, hub: hub}
}

// ConversationSummary is one entry in a user's conversation list: the
// counterpart, the most recent message either way, and how many of the
// counterpart's messages are still unread.
type ConversationSummary struct {
	User        models.User        `json:"user"`
	LastMessage models.ChatMessage `json:"last_message"`
	UnreadCount int                `json:"unread_count"`
}

// Send appends a message and pushes it to the recipient's open connections.
func (s *ChatService) Send(sender *models.User, recipientID uint, content string) (*models.ChatMessage, error) {
	if recipientID == 0 || content == "" {
		return nil, fmt.Errorf("%w: recipient and content are required", ErrValidation)
	}

	var recipient models.User
	if err := s.db.First(&recipient, recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipient not found", ErrNotFound)
		}
		return nil, err
	}

	message := &models.ChatMessage{
		SenderID:    sender.ID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Sender").Preload("Recipient").First(message, message.ID).Error; err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(recipientID, &ws.Message{
			Type:      "chat",
			SenderID:  sender.ID,
			Content:   content,
			Data:      message,
			Timestamp: time.Now(),
		})
	}
	return message, nil
}

// Conversation returns the full bidirectional history with another user in
// chronological order and, as a side effect, marks the counterpart's unread
// messages as read.
func (s *ChatService) Conversation(user *models.User, otherID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Preload("Sender").Preload("Recipient").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			user.ID, otherID, otherID, user.ID).
		Order("created_at").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	if err := s.markRead(otherID, user.ID); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListConversations folds the user's full message set into one summary per
// counterpart, sorted by most recent message.
func (s *ChatService) ListConversations(user *models.User) ([]ConversationSummary, error) {
	var messages []models.ChatMessage
	err := s.db.
		Where("sender_id = ? OR recipient_id = ?", user.ID, user.ID).
		Order("created_at").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	byOther := make(map[uint]*ConversationSummary)
	for _, m := range messages {
		otherID := m.SenderID
		if otherID == user.ID {
			otherID = m.RecipientID
		}
		summary, ok := byOther[otherID]
		if !ok {
			summary = &ConversationSummary{}
			byOther[otherID] = summary
		}
		summary.LastMessage = m
		if m.RecipientID == user.ID && !m.IsRead {
			summary.UnreadCount++
		}
	}

	if len(byOther) == 0 {
		return []ConversationSummary{}, nil
	}

	otherIDs := make([]uint, 0, len(byOther))
	for otherID := range byOther {
		otherIDs = append(otherIDs, otherID)
	}
	var others []models.User
	if err := s.db.Where("id IN ?", otherIDs).Find(&others).Error; err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(byOther))
	for _, other := range others {
		summary := byOther[other.ID]
		summary.User = other
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

// MarkRead marks every unread message from sender to the caller as read.
func (s *ChatService) MarkRead(user *models.User, senderID uint) error {
	return s.markRead(senderID, user.ID)
}

func (s *ChatService) markRead(senderID, recipientID uint) error {
	now := time.Now()
	return s.db.Model(&models.ChatMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}
