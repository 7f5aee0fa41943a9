package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	clog "boardsync/internal/log"
	"boardsync/internal/metrics"
	"boardsync/internal/models"
	"boardsync/internal/presence"
	"boardsync/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

const (
	maxMessageLen  = 2000
	persistTimeout = 5 * time.Second
)

// Router is the per-event state machine. Every handler follows the same
// template: decode and validate the payload, authorize, mutate shared state,
// broadcast, then persist where the event is durable. A handler never lets a
// failure escape: it either answers the sender with an error event or logs a
// best-effort miss.
type Router struct {
	hub      *Hub
	registry *presence.Registry
	boards   store.Boards
	messages store.Messages
	logger   zerolog.Logger
}

func NewRouter(hub *Hub, registry *presence.Registry, boards store.Boards, messages store.Messages) *Router {
	return &Router{
		hub:      hub,
		registry: registry,
		boards:   boards,
		messages: messages,
		logger:   clog.Component("event-router"),
	}
}

// Dispatch routes one inbound envelope to its handler.
func (r *Router) Dispatch(c *Client, env Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("event", env.Type).Interface("panic", rec).Msg("handler panic")
			c.enqueue(encodeEvent(evtError, errorEvent{Message: "internal error"}))
		}
	}()
	metrics.WsEventsTotal.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case evtJoinBoard:
		r.handleJoinBoard(c, env)
	case evtLeaveBoard:
		r.handleLeaveBoard(c, env)
	case evtDrawing:
		r.handleDrawing(c, env, true)
	case evtDrawingUpdate:
		r.handleDrawing(c, env, false)
	case evtDeleteElement:
		r.handleDeleteElement(c, env)
	case evtClearBoard:
		r.handleClearBoard(c, env)
	case evtCursorMove:
		r.handleCursorMove(c, env)
	case evtSendMessage:
		r.handleSendMessage(c, env)
	case evtTypingStart:
		r.handleTyping(c, env, true)
	case evtTypingStop:
		r.handleTyping(c, env, false)
	case evtSendInvite:
		r.handleSendInvite(c, env)
	case evtCollaboratorAdded:
		r.handleCollaboratorAdded(c, env)
	case evtPing:
		c.enqueue(encodeEvent(evtPong, nil))
	default:
		r.reject(c, env.Type, "unknown event type")
	}
}

// Disconnect is the transport-level leave: presence and room membership go
// away, in-flight persistence does not.
func (r *Router) Disconnect(c *Client) {
	r.leaveCurrentBoard(c)
}

func (r *Router) reject(c *Client, event, msg string) {
	metrics.WsEventErrorsTotal.WithLabelValues(event).Inc()
	c.enqueue(encodeEvent(evtError, errorEvent{Message: msg}))
}

func decodePayload[T any](env Envelope) (T, bool) {
	var p T
	if len(env.Payload) == 0 {
		return p, false
	}
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return p, false
	}
	return p, true
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), persistTimeout)
}

// joined reports whether the connection is currently in the given board room.
// Every in-room event requires it; join-board is the only way in.
func joined(c *Client, boardID string) bool {
	return boardID != "" && c.boardID == boardID
}

func (r *Router) presenceEntry(c *Client) presence.Entry {
	return presence.Entry{
		UserID:    c.identity.ID,
		Username:  c.identity.Username,
		AvatarURL: c.identity.AvatarURL,
	}
}

func (r *Router) activeUsersFrame(boardID string) []byte {
	return encodeEvent(evtActiveUsers, activeUsersEvent{Users: r.registry.List(boardID)})
}

func (r *Router) handleJoinBoard(c *Client, env Envelope) {
	p, ok := decodePayload[boardRef](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()
	acc, err := r.boards.Access(ctx, p.BoardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.reject(c, env.Type, "board not found")
			return
		}
		r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("access lookup")
		r.reject(c, env.Type, "board lookup failed")
		return
	}
	if acc.RoleOf(c.identity.ID) == "" {
		r.reject(c, env.Type, "no access to board")
		return
	}

	// One board room per connection: joining a new board leaves the old one,
	// with the usual departure broadcasts.
	if c.boardID != "" && c.boardID != p.BoardID {
		r.leaveCurrentBoard(c)
	}

	r.registry.Add(p.BoardID, r.presenceEntry(c))
	r.hub.joinRoom(p.BoardID, c)
	c.boardID = p.BoardID

	r.hub.Broadcast(p.BoardID, encodeEvent(evtUserJoined, userJoinedEvent{User: r.presenceEntry(c)}), c)
	c.enqueue(encodeEvent(evtJoinedBoard, joinedBoardEvent{BoardID: p.BoardID}))
	c.enqueue(r.activeUsersFrame(p.BoardID))
}

func (r *Router) handleLeaveBoard(c *Client, env Envelope) {
	p, ok := decodePayload[boardRef](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}
	r.leaveCurrentBoard(c)
}

// leaveCurrentBoard removes the connection from its room and tells the
// remaining members. No-op when roaming.
func (r *Router) leaveCurrentBoard(c *Client) {
	boardID := c.boardID
	if boardID == "" {
		return
	}
	removed := r.registry.Remove(boardID, c.identity.ID)
	r.hub.leaveRoom(boardID, c)
	c.boardID = ""
	if removed {
		r.hub.Broadcast(boardID, encodeEvent(evtUserLeft, userLeftEvent{
			UserID:   c.identity.ID,
			Username: c.identity.Username,
		}), nil)
		r.hub.Broadcast(boardID, r.activeUsersFrame(boardID), nil)
	}
}

// handleDrawing covers both the durable drawing event and the ephemeral
// drawing-update preview; only the former ever reaches the store.
func (r *Router) handleDrawing(c *Client, env Envelope, durable bool) {
	p, ok := decodePayload[drawingPayload](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}
	if !p.Element.Type.Valid() {
		r.reject(c, env.Type, "unknown element type")
		return
	}

	el := p.Element
	el.UserID = c.identity.ID
	el.Username = c.identity.Username
	el.Timestamp = time.Now()
	if durable && el.Persist && el.ID == "" {
		el.ID = uuid.NewString()
	}

	// Broadcast happens before the store write is awaited: interactive latency
	// never pays for persistence.
	r.hub.Broadcast(p.BoardID, encodeEvent(env.Type, elementEvent{Element: el}), c)

	if durable && el.Persist {
		go r.persistElement(p.BoardID, el)
	}
}

// persistElement is the fire-and-forget tail of a drawing event. Failure is an
// explicit branch: counted, logged, never surfaced mid-session.
func (r *Router) persistElement(boardID string, el Element) {
	ctx, cancel := opCtx()
	defer cancel()
	rec := &models.BoardElement{
		ID:          el.ID,
		BoardID:     boardID,
		ClientID:    el.ClientID,
		Type:        el.Type,
		Coordinates: datatypes.JSON(el.Coordinates),
		Style:       datatypes.JSON(el.Style),
		UserID:      el.UserID,
		Username:    el.Username,
		CreatedAt:   el.Timestamp,
	}
	if err := r.boards.AppendElement(ctx, rec); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("append-element").Inc()
		r.logger.Error().Err(err).Str("board_id", boardID).Str("client_id", el.ClientID).Msg("append element")
	}
}

func (r *Router) handleDeleteElement(c *Client, env Envelope) {
	p, ok := decodePayload[deleteElementPayload](env)
	if !ok || p.BoardID == "" || p.ElementID == "" {
		r.reject(c, env.Type, "boardId and elementId are required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}

	r.hub.Broadcast(p.BoardID, encodeEvent(evtElementDeleted, elementDeletedEvent{
		ElementID: p.ElementID,
		DeletedBy: c.identity.Username,
	}), c)

	go func() {
		ctx, cancel := opCtx()
		defer cancel()
		if err := r.boards.RemoveElement(ctx, p.BoardID, p.ElementID); err != nil {
			metrics.PersistFailuresTotal.WithLabelValues("remove-element").Inc()
			r.logger.Error().Err(err).Str("board_id", p.BoardID).Str("element_id", p.ElementID).Msg("remove element")
		}
	}()
}

func (r *Router) handleClearBoard(c *Client, env Envelope) {
	p, ok := decodePayload[boardRef](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}

	// Clearing wipes everyone's work, so it is gated on editor rather than the
	// implicit room membership the other drawing events rely on.
	ctx, cancel := opCtx()
	defer cancel()
	acc, err := r.boards.Access(ctx, p.BoardID)
	if err != nil {
		r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("access lookup")
		r.reject(c, env.Type, "board lookup failed")
		return
	}
	if !acc.RoleOf(c.identity.ID).AtLeast(models.RoleEditor) {
		r.reject(c, env.Type, "editor role required")
		return
	}

	r.hub.Broadcast(p.BoardID, encodeEvent(evtBoardCleared, boardClearedEvent{ClearedBy: c.identity.Username}), c)

	go func() {
		ctx, cancel := opCtx()
		defer cancel()
		if err := r.boards.ClearElements(ctx, p.BoardID); err != nil {
			metrics.PersistFailuresTotal.WithLabelValues("clear-board").Inc()
			r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("clear board")
		}
	}()
}

func (r *Router) handleCursorMove(c *Client, env Envelope) {
	p, ok := decodePayload[cursorMovePayload](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}
	r.registry.UpdateCursor(p.BoardID, c.identity.ID, p.Cursor)
	r.hub.Broadcast(p.BoardID, encodeEvent(evtCursorMove, cursorMoveEvent{
		UserID:   c.identity.ID,
		Username: c.identity.Username,
		Cursor:   p.Cursor,
	}), c)
}

func (r *Router) handleSendMessage(c *Client, env Envelope) {
	p, ok := decodePayload[sendMessagePayload](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" {
		r.reject(c, env.Type, "content is required")
		return
	}
	if len(p.Content) > maxMessageLen {
		p.Content = p.Content[:maxMessageLen]
	}

	ctx, cancel := opCtx()
	defer cancel()
	acc, err := r.boards.Access(ctx, p.BoardID)
	if err != nil {
		r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("access lookup")
		r.reject(c, env.Type, "board lookup failed")
		return
	}
	if acc.RoleOf(c.identity.ID) == "" {
		r.reject(c, env.Type, "no access to board")
		return
	}

	// Chat is durable truth: it must hit the store before any client sees it,
	// or a reload would show a history the room never had.
	msg := &models.ChatMessage{
		BoardID:   p.BoardID,
		UserID:    c.identity.ID,
		Username:  c.identity.Username,
		Content:   p.Content,
		ReplyToID: p.ReplyTo,
		CreatedAt: time.Now(),
	}
	if err := r.messages.Append(ctx, msg); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("append-message").Inc()
		r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("append message")
		r.reject(c, env.Type, "message not delivered")
		return
	}

	frame := encodeEvent(evtNewMessage, newMessageEvent{Message: chatMessageDTO{
		ID:        msg.ID,
		BoardID:   msg.BoardID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Content:   msg.Content,
		ReplyTo:   msg.ReplyToID,
		CreatedAt: msg.CreatedAt,
	}})
	// Including the sender: receiving your own message back is the ack.
	r.hub.Broadcast(p.BoardID, frame, c)
	c.enqueue(frame)
}

func (r *Router) handleTyping(c *Client, env Envelope, isTyping bool) {
	p, ok := decodePayload[boardRef](env)
	if !ok || p.BoardID == "" {
		r.reject(c, env.Type, "boardId is required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}
	r.hub.Broadcast(p.BoardID, encodeEvent(evtUserTyping, userTypingEvent{
		UserID:   c.identity.ID,
		Username: c.identity.Username,
		IsTyping: isTyping,
	}), c)
}

// handleSendInvite delivers to the target user's private room only; any
// connected user may notify another.
func (r *Router) handleSendInvite(c *Client, env Envelope) {
	p, ok := decodePayload[sendInvitePayload](env)
	if !ok || p.UserID == 0 || p.BoardID == "" {
		r.reject(c, env.Type, "userId and boardId are required")
		return
	}
	r.hub.ToUser(p.UserID, encodeEvent(evtInviteReceived, inviteReceivedEvent{
		Sender:     c.identity,
		BoardID:    p.BoardID,
		BoardTitle: p.BoardTitle,
		Timestamp:  time.Now(),
	}))
}

// handleCollaboratorAdded refreshes the access descriptor from the store and
// tells the whole room, sender included, so every client converges on the same
// collaborator list.
func (r *Router) handleCollaboratorAdded(c *Client, env Envelope) {
	p, ok := decodePayload[collaboratorAddedPayload](env)
	if !ok || p.BoardID == "" || p.CollaboratorID == 0 {
		r.reject(c, env.Type, "boardId and collaboratorId are required")
		return
	}
	if !joined(c, p.BoardID) {
		r.reject(c, env.Type, "not joined to board")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()
	acc, err := r.boards.Access(ctx, p.BoardID)
	if err != nil {
		r.logger.Error().Err(err).Str("board_id", p.BoardID).Msg("access refresh")
		r.reject(c, env.Type, "board lookup failed")
		return
	}

	collabs := make([]collaboratorDTO, 0, len(acc.Collaborators))
	var added *collaboratorDTO
	for _, col := range acc.Collaborators {
		dto := collaboratorDTO{UserID: col.UserID, Role: col.Role}
		collabs = append(collabs, dto)
		if col.UserID == p.CollaboratorID {
			added = &dto
		}
	}

	frame := encodeEvent(evtCollaboratorAdded, collaboratorAddedEvent{
		BoardID:       p.BoardID,
		Collaborators: collabs,
		Collaborator:  added,
	})
	r.hub.Broadcast(p.BoardID, frame, c)
	c.enqueue(frame)
}

// EvictPresence is the Presence Cleaner's notification path: the swept user is
// announced to the room exactly as if they had left. Their connection, if any
// still exists, keeps its room membership; only presence is dropped.
func (r *Router) EvictPresence(ev presence.Eviction) {
	r.hub.Broadcast(ev.BoardID, encodeEvent(evtUserLeft, userLeftEvent{
		UserID:   ev.Entry.UserID,
		Username: ev.Entry.Username,
	}), nil)
	r.hub.Broadcast(ev.BoardID, r.activeUsersFrame(ev.BoardID), nil)
}
