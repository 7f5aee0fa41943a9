package service

import (
	"context"
	"errors"

	"boardsync/internal/models"
	"boardsync/internal/presence"
	"boardsync/internal/store"

	"github.com/google/uuid"
)

// BoardService is the REST-side view of the Board Store, with live presence
// counts mixed in from the Session Registry.
type BoardService struct {
	boards   store.Boards
	registry *presence.Registry
}

func NewBoardService(boards store.Boards, registry *presence.Registry) *BoardService {
	return &BoardService{boards: boards, registry: registry}
}

type BoardDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	OwnerID  uint   `json:"ownerId"`
	IsPublic bool   `json:"isPublic"`
	Online   int    `json:"online"`
}

func (s *BoardService) toDTO(b models.Board) BoardDTO {
	return BoardDTO{
		ID:       b.ID,
		Title:    b.Title,
		OwnerID:  b.OwnerID,
		IsPublic: b.IsPublic,
		Online:   s.registry.Count(b.ID),
	}
}

func (s *BoardService) Create(ctx context.Context, title string, ownerID uint, isPublic bool) (*BoardDTO, error) {
	board := models.Board{ID: uuid.NewString(), Title: title, OwnerID: ownerID, IsPublic: isPublic}
	if err := s.boards.Create(ctx, &board); err != nil {
		return nil, err
	}
	dto := s.toDTO(board)
	return &dto, nil
}

func (s *BoardService) List(ctx context.Context, userID uint, limit int) ([]BoardDTO, error) {
	boards, err := s.boards.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]BoardDTO, 0, len(boards))
	for _, b := range boards {
		out = append(out, s.toDTO(b))
	}
	return out, nil
}

// Authorize resolves the caller's role on a board and checks it against the
// requirement. Returns ErrBoardNotFound, ErrNoAccess or ErrForbidden.
func (s *BoardService) Authorize(ctx context.Context, boardID string, userID uint, required models.Role) (models.Role, error) {
	acc, err := s.boards.Access(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrBoardNotFound
		}
		return "", err
	}
	role := acc.RoleOf(userID)
	if role == "" {
		return "", ErrNoAccess
	}
	if !role.AtLeast(required) {
		return role, ErrForbidden
	}
	return role, nil
}

func (s *BoardService) Get(ctx context.Context, boardID string, userID uint) (*BoardDTO, error) {
	if _, err := s.Authorize(ctx, boardID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	board, err := s.boards.Get(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	dto := s.toDTO(*board)
	return &dto, nil
}

// Elements returns the persisted snapshot a reloading client reconciles
// against before new real-time events arrive.
func (s *BoardService) Elements(ctx context.Context, boardID string, userID uint) ([]models.BoardElement, error) {
	if _, err := s.Authorize(ctx, boardID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.boards.Elements(ctx, boardID)
}

// AddCollaborator grants or updates a role. Requires admin on the board; the
// owner role itself is not grantable.
func (s *BoardService) AddCollaborator(ctx context.Context, boardID string, actorID, userID uint, role models.Role) error {
	if !role.Valid() || role == models.RoleOwner {
		return ErrForbidden
	}
	if _, err := s.Authorize(ctx, boardID, actorID, models.RoleAdmin); err != nil {
		return err
	}
	return s.boards.AddCollaborator(ctx, boardID, userID, role)
}
