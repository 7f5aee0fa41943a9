package ws

import (
	"encoding/json"
	"time"

	"boardsync/internal/auth"
	"boardsync/internal/models"
	"boardsync/internal/presence"
)

// Wire events, client to server.
const (
	evtJoinBoard         = "join-board"
	evtLeaveBoard        = "leave-board"
	evtDrawing           = "drawing"
	evtDrawingUpdate     = "drawing-update"
	evtDeleteElement     = "delete-element"
	evtClearBoard        = "clear-board"
	evtCursorMove        = "cursor-move"
	evtSendMessage       = "send-message"
	evtTypingStart       = "typing-start"
	evtTypingStop        = "typing-stop"
	evtSendInvite        = "send-invite"
	evtCollaboratorAdded = "collaborator-added"
	evtPing              = "ping"
)

// Wire events, server to client.
const (
	evtJoinedBoard    = "joined-board"
	evtUserJoined     = "user-joined"
	evtUserLeft       = "user-left"
	evtActiveUsers    = "active-users"
	evtElementDeleted = "element-deleted"
	evtBoardCleared   = "board-cleared"
	evtNewMessage     = "new-message"
	evtUserTyping     = "user-typing"
	evtInviteReceived = "invite-received"
	evtPong           = "pong"
	evtError          = "error"
)

// Envelope is the frame shape in both directions: an event name plus an
// event-specific payload, decoded into a typed struct before any handler runs.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// encodeEvent marshals an outbound frame. Payload marshal failures are
// programming errors on our own types, so the frame degrades to payload-less
// rather than killing the sender.
func encodeEvent(event string, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	b, _ := json.Marshal(Envelope{Type: event, Payload: raw})
	return b
}

// Element is the wire form of a drawable unit. ClientID travels end to end so
// that a delete keyed by it resolves before the server id is known anywhere.
type Element struct {
	ID          string             `json:"id,omitempty"`
	ClientID    string             `json:"clientId"`
	Type        models.ElementType `json:"type"`
	Coordinates json.RawMessage    `json:"coordinates,omitempty"`
	Style       json.RawMessage    `json:"style,omitempty"`
	Persist     bool               `json:"persist,omitempty"`
	UserID      uint               `json:"userId,omitempty"`
	Username    string             `json:"username,omitempty"`
	Timestamp   time.Time          `json:"timestamp,omitempty"`
}

// Inbound payloads.

type boardRef struct {
	BoardID string `json:"boardId"`
}

type drawingPayload struct {
	BoardID string  `json:"boardId"`
	Element Element `json:"element"`
}

type deleteElementPayload struct {
	BoardID   string `json:"boardId"`
	ElementID string `json:"elementId"`
}

type cursorMovePayload struct {
	BoardID string          `json:"boardId"`
	Cursor  presence.Cursor `json:"cursor"`
}

type sendMessagePayload struct {
	BoardID string `json:"boardId"`
	Content string `json:"content"`
	ReplyTo *uint  `json:"replyTo,omitempty"`
}

type sendInvitePayload struct {
	UserID     uint   `json:"userId"`
	BoardID    string `json:"boardId"`
	BoardTitle string `json:"boardTitle"`
}

type collaboratorAddedPayload struct {
	BoardID        string `json:"boardId"`
	CollaboratorID uint   `json:"collaboratorId"`
}

// Outbound payloads.

type joinedBoardEvent struct {
	BoardID string `json:"boardId"`
}

type elementEvent struct {
	Element Element `json:"element"`
}

type userJoinedEvent struct {
	User presence.Entry `json:"user"`
}

type userLeftEvent struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type activeUsersEvent struct {
	Users []presence.Entry `json:"users"`
}

type elementDeletedEvent struct {
	ElementID string `json:"elementId"`
	DeletedBy string `json:"deletedBy"`
}

type boardClearedEvent struct {
	ClearedBy string `json:"clearedBy"`
}

type cursorMoveEvent struct {
	UserID   uint            `json:"userId"`
	Username string          `json:"username"`
	Cursor   presence.Cursor `json:"cursor"`
}

type chatMessageDTO struct {
	ID        uint      `json:"id"`
	BoardID   string    `json:"boardId"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	ReplyTo   *uint     `json:"replyTo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type newMessageEvent struct {
	Message chatMessageDTO `json:"message"`
}

type userTypingEvent struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type inviteReceivedEvent struct {
	Sender     auth.Identity `json:"sender"`
	BoardID    string        `json:"boardId"`
	BoardTitle string        `json:"boardTitle"`
	Timestamp  time.Time     `json:"timestamp"`
}

type collaboratorDTO struct {
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
}

type collaboratorAddedEvent struct {
	BoardID       string            `json:"boardId"`
	Collaborators []collaboratorDTO `json:"collaborators"`
	Collaborator  *collaboratorDTO  `json:"collaborator,omitempty"`
}

type errorEvent struct {
	Message string `json:"message"`
}
