package service

import (
	"context"
	"time"

	"boardsync/internal/models"
	"boardsync/internal/store"
)

// MessageService pages persisted board chat for the REST backstop.
type MessageService struct {
	messages store.Messages
	boards   *BoardService
}

func NewMessageService(messages store.Messages, boards *BoardService) *MessageService {
	return &MessageService{messages: messages, boards: boards}
}

type MessageDTO struct {
	ID        uint      `json:"id"`
	BoardID   string    `json:"boardId"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	ReplyTo   *uint     `json:"replyTo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListByBoard returns messages ascending, paged backwards from beforeID.
// Read access on the board is required.
func (s *MessageService) ListByBoard(ctx context.Context, boardID string, userID uint, limit int, beforeID uint) ([]MessageDTO, error) {
	if _, err := s.boards.Authorize(ctx, boardID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByBoard(ctx, boardID, limit, beforeID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDTO{
			ID:        m.ID,
			BoardID:   m.BoardID,
			UserID:    m.UserID,
			Username:  m.Username,
			Content:   m.Content,
			ReplyTo:   m.ReplyToID,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
