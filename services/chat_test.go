package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azhome-server/models"
)

func TestSendMessage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")
	bob := createTestClient(t, db, "bob@test.com")

	message, err := svc.Send(alice, bob.ID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, message.SenderID)
	assert.Equal(t, bob.ID, message.RecipientID)
	assert.False(t, message.IsRead)
	assert.Equal(t, alice.ID, message.Sender.ID)
}

func TestSendMessageValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")

	_, err := svc.Send(alice, 0, "Hello")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(alice, 9999, "Hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationOrderAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")
	bob := createTestClient(t, db, "bob@test.com")

	_, err := svc.Send(alice, bob.ID, "First")
	require.NoError(t, err)
	_, err = svc.Send(bob, alice.ID, "Second")
	require.NoError(t, err)
	_, err = svc.Send(alice, bob.ID, "Third")
	require.NoError(t, err)

	messages, err := svc.Conversation(bob, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "First", messages[0].Content)
	assert.Equal(t, "Second", messages[1].Content)
	assert.Equal(t, "Third", messages[2].Content)

	// Fetching the conversation marks alice's messages to bob as read
	var unread int64
	db.Model(&models.ChatMessage{}).
		Where("recipient_id = ? AND is_read = ?", bob.ID, false).
		Count(&unread)
	assert.Zero(t, unread)

	// Bob's own unread message to alice is untouched
	db.Model(&models.ChatMessage{}).
		Where("recipient_id = ? AND is_read = ?", alice.ID, false).
		Count(&unread)
	assert.EqualValues(t, 1, unread)
}

func TestListConversationsFold(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")
	bob := createTestClient(t, db, "bob@test.com")
	carol := createTestClient(t, db, "carol@test.com")

	_, err := svc.Send(bob, alice.ID, "Hi from Bob")
	require.NoError(t, err)
	_, err = svc.Send(bob, alice.ID, "Still here")
	require.NoError(t, err)
	_, err = svc.Send(alice, carol.ID, "Hi Carol")
	require.NoError(t, err)
	_, err = svc.Send(carol, alice.ID, "Hi back")
	require.NoError(t, err)

	summaries, err := svc.ListConversations(alice)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byUser := make(map[uint]ConversationSummary)
	for _, s := range summaries {
		byUser[s.User.ID] = s
	}

	bobSummary := byUser[bob.ID]
	assert.Equal(t, 2, bobSummary.UnreadCount)
	assert.Equal(t, "Still here", bobSummary.LastMessage.Content)

	carolSummary := byUser[carol.ID]
	assert.Equal(t, 1, carolSummary.UnreadCount)
	assert.Equal(t, "Hi back", carolSummary.LastMessage.Content)
}

func TestListConversationsEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")

	summaries, err := svc.ListConversations(alice)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestMarkRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChatService(db, nil)
	alice := createTestClient(t, db, "alice@test.com")
	bob := createTestClient(t, db, "bob@test.com")

	_, err := svc.Send(alice, bob.ID, "One")
	require.NoError(t, err)
	_, err = svc.Send(alice, bob.ID, "Two")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(bob, alice.ID))

	var messages []models.ChatMessage
	require.NoError(t, db.Where("recipient_id = ?", bob.ID).Find(&messages).Error)
	for _, m := range messages {
		assert.True(t, m.IsRead)
		assert.NotNil(t, m.ReadAt)
	}
}
