package store

import (
	"context"
	"errors"

	"boardsync/internal/models"

	"gorm.io/gorm"
)

// BoardStore is the gorm/Postgres implementation of Boards.
type BoardStore struct {
	db *gorm.DB
}

func NewBoardStore(db *gorm.DB) *BoardStore {
	return &BoardStore{db: db}
}

func (s *BoardStore) Create(ctx context.Context, board *models.Board) error {
	return s.db.WithContext(ctx).Create(board).Error
}

func (s *BoardStore) Get(ctx context.Context, boardID string) (*models.Board, error) {
	var board models.Board
	if err := s.db.WithContext(ctx).First(&board, "id = ?", boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (s *BoardStore) ListForUser(ctx context.Context, userID uint, limit int) ([]models.Board, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var boards []models.Board
	err := s.db.WithContext(ctx).
		Where("owner_id = ? OR is_public = ? OR id IN (?)",
			userID, true,
			s.db.Model(&models.BoardCollaborator{}).Select("board_id").Where("user_id = ?", userID)).
		Order("updated_at desc").Limit(limit).Find(&boards).Error
	return boards, err
}

func (s *BoardStore) Access(ctx context.Context, boardID string) (*Access, error) {
	board, err := s.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	var collabs []models.BoardCollaborator
	if err := s.db.WithContext(ctx).Where("board_id = ?", boardID).Find(&collabs).Error; err != nil {
		return nil, err
	}
	return &Access{OwnerID: board.OwnerID, IsPublic: board.IsPublic, Collaborators: collabs}, nil
}

func (s *BoardStore) AddCollaborator(ctx context.Context, boardID string, userID uint, role models.Role) error {
	collab := models.BoardCollaborator{BoardID: boardID, UserID: userID, Role: role}
	// Re-inviting an existing collaborator updates the role in place.
	return s.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Assign("role", role).
		FirstOrCreate(&collab).Error
}

func (s *BoardStore) AppendElement(ctx context.Context, el *models.BoardElement) error {
	return s.db.WithContext(ctx).Create(el).Error
}

func (s *BoardStore) RemoveElement(ctx context.Context, boardID, elementID string) error {
	return s.db.WithContext(ctx).
		Where("board_id = ? AND (id = ? OR client_id = ?)", boardID, elementID, elementID).
		Delete(&models.BoardElement{}).Error
}

func (s *BoardStore) ClearElements(ctx context.Context, boardID string) error {
	return s.db.WithContext(ctx).Where("board_id = ?", boardID).Delete(&models.BoardElement{}).Error
}

func (s *BoardStore) Elements(ctx context.Context, boardID string) ([]models.BoardElement, error) {
	var els []models.BoardElement
	err := s.db.WithContext(ctx).Where("board_id = ?", boardID).Order("created_at asc").Find(&els).Error
	return els, err
}

// MessageStore is the gorm/Postgres implementation of Messages.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *MessageStore) ListByBoard(ctx context.Context, boardID string, limit int, beforeID uint) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("board_id = ?", boardID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []models.ChatMessage
	if err := q.Order("id desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
