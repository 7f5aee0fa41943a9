// Package store is the persistence boundary of the sync layer. The Event
// Router only sees these interfaces; tests substitute in-memory fakes.
package store

import (
	"context"
	"errors"

	"boardsync/internal/models"
)

var (
	ErrNotFound = errors.New("store: not found")
)

// Access is the board access descriptor read (never written) by the Event
// Router to authorize joins and privileged actions.
type Access struct {
	OwnerID       uint
	IsPublic      bool
	Collaborators []models.BoardCollaborator
}

// RoleOf resolves a user's effective role: owner match first, then the
// collaborator entry, then implicit viewer on public boards. Empty string
// means no access at all.
func (a *Access) RoleOf(userID uint) models.Role {
	if a.OwnerID == userID {
		return models.RoleOwner
	}
	for _, c := range a.Collaborators {
		if c.UserID == userID {
			return c.Role
		}
	}
	if a.IsPublic {
		return models.RoleViewer
	}
	return ""
}

// Boards is the external board document store: CRUD plus the per-document
// element append/remove primitives the drawing path relies on.
type Boards interface {
	Create(ctx context.Context, board *models.Board) error
	Get(ctx context.Context, boardID string) (*models.Board, error)
	// ListForUser returns boards owned by, shared with, or public to the user.
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.Board, error)
	Access(ctx context.Context, boardID string) (*Access, error)
	AddCollaborator(ctx context.Context, boardID string, userID uint, role models.Role) error

	AppendElement(ctx context.Context, el *models.BoardElement) error
	// RemoveElement deletes by server id or client id, whichever matches.
	RemoveElement(ctx context.Context, boardID, elementID string) error
	ClearElements(ctx context.Context, boardID string) error
	Elements(ctx context.Context, boardID string) ([]models.BoardElement, error)
}

// Messages persists board chat. Append must complete before the message is
// broadcast to any client.
type Messages interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	// ListByBoard pages backwards: messages with id < beforeID, returned ascending.
	ListByBoard(ctx context.Context, boardID string, limit int, beforeID uint) ([]models.ChatMessage, error)
}
