package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

type ChatStore struct {
	db     *gorm.DB
	logger *logger_i.Logger
}

func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{
		db:     db,
		logger: logger_i.NewLogger("ChatStore"),
	}
}

func (s *ChatStore) CreateSession(ctx context.Context, userID uint64, title string) (chatModel.ChatSession, error) {
	session := chatModel.ChatSession{UserID: userID, Title: title}
	err := s.db.WithContext(ctx).Create(&session).Error
	return session, err
}

func (s *ChatStore) GetSession(ctx context.Context, sessionID uint64, userID uint64) (chatModel.ChatSession, bool) {
	var session chatModel.ChatSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("could not load session", "sessionId", sessionID, "error", err)
		}
		return chatModel.ChatSession{}, false
	}
	return session, true
}

func (s *ChatStore) ListSessions(ctx context.Context, userID uint64) ([]chatModel.ChatSession, error) {
	var sessions []chatModel.ChatSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *ChatStore) ListMessages(ctx context.Context, sessionID uint64) ([]chatModel.ChatMessage, error) {
	var messages []chatModel.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (s *ChatStore) SaveMessage(ctx context.Context, message *chatModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", message.SessionID)
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Error("could not save message", "role", message.Role, "error", err)
		return err
	}
	return nil
}

// SaveUserMessage persists the user's turn and auto-titles the session from
// its first message: verbatim up to the title limit, truncated with an
// ellipsis beyond it.
func (s *ChatStore) SaveUserMessage(ctx context.Context, session *chatModel.ChatSession, content string) (chatModel.ChatMessage, error) {
	message := chatModel.ChatMessage{
		SessionID: session.ID,
		Role:      chatModel.RoleUser,
		Content:   content,
	}
	if err := s.SaveMessage(ctx, &message); err != nil {
		return chatModel.ChatMessage{}, err
	}

	if session.Title == "" {
		session.Title = TitleFromMessage(content)
		if err := s.db.WithContext(ctx).Model(session).Update("title", session.Title).Error; err != nil {
			return chatModel.ChatMessage{}, err
		}
	}
	return message, nil
}

// SaveFeedback records a reader's verdict on a message. Scoped by session so
// a caller cannot rate messages outside a conversation it owns.
func (s *ChatStore) SaveFeedback(ctx context.Context, sessionID uint64, messageID uint64, isHelpful *bool, feedbackText string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&chatModel.ChatMessage{}).
		Where("id = ? AND session_id = ?", messageID, sessionID).
		Updates(map[string]any{
			"is_helpful":    isHelpful,
			"feedback_text": feedbackText,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TitleFromMessage truncates on rune boundaries so a multibyte first message
// cannot produce an invalid title.
func TitleFromMessage(content string) string {
	runes := []rune(content)
	if len(runes) > config.SessionTitleLength {
		return string(runes[:config.SessionTitleLength]) + "..."
	}
	return content
}
