package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"not null"`
	AvatarURL    string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Board is the unit of access control and persistence. IsPublic grants
// implicit viewer access to any authenticated user.
type Board struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string `gorm:"size:128;not null"`
	OwnerID   uint   `gorm:"index;not null"`
	IsPublic  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BoardCollaborator struct {
	ID      uint   `gorm:"primaryKey"`
	BoardID string `gorm:"index:idx_collab_board,unique;size:36;not null"`
	UserID  uint   `gorm:"index:idx_collab_board,unique;not null"`
	Role    Role   `gorm:"size:16;not null;default:'viewer'"`
}

// BoardElement is one persisted drawable unit. ClientID is the id the
// originating client assigned before the server id existed; deletes may arrive
// keyed by either one.
type BoardElement struct {
	ID          string         `gorm:"primaryKey;size:36"`
	BoardID     string         `gorm:"index:idx_element_board;size:36;not null"`
	ClientID    string         `gorm:"index:idx_element_client;size:64"`
	Type        ElementType    `gorm:"size:32;not null"`
	Coordinates datatypes.JSON `gorm:"type:jsonb"`
	Style       datatypes.JSON `gorm:"type:jsonb"`
	UserID      uint           `gorm:"index;not null"`
	Username    string         `gorm:"size:64"`
	CreatedAt   time.Time
}

type ChatMessage struct {
	ID        uint   `gorm:"primaryKey"`
	BoardID   string `gorm:"index:idx_msg_board;size:36;not null"`
	UserID    uint   `gorm:"index;not null"`
	Username  string `gorm:"size:64"`
	Content   string `gorm:"type:text;not null"`
	ReplyToID *uint  `gorm:"index"`
	CreatedAt time.Time
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;size:128;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	RevokedAt *time.Time
	CreatedAt time.Time
}
