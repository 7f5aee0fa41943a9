package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"boardsync/internal/auth"
	"boardsync/internal/models"
	"boardsync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler aggregates the REST handlers; services are injected.
type Handler struct {
	userSvc  *service.UserService
	boardSvc *service.BoardService
	msgSvc   *service.MessageService
}

func NewHandler(userSvc *service.UserService, boardSvc *service.BoardService, msgSvc *service.MessageService) *Handler {
	return &Handler{userSvc: userSvc, boardSvc: boardSvc, msgSvc: msgSvc}
}

func boardError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
	case errors.Is(err, service.ErrNoAccess):
		c.JSON(http.StatusForbidden, gin.H{"error": "no access to board"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	default:
		log.Error().Err(err).Msg(op)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Avatar   string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(req.Username) < 2 || len(req.Username) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username"})
		return
	}
	if len(req.Password) < 4 || len(req.Password) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
		return
	}
	result, err := h.userSvc.Register(req.Username, req.Password, req.Avatar)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": result.ID, "username": result.Username})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.userSvc.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"avatar":   result.User.AvatarURL,
		},
	})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.userSvc.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("refresh token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": result.AccessToken, "refresh_token": result.RefreshToken})
}

func (h *Handler) CreateBoard(c *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		IsPublic bool   `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board title"})
		return
	}
	ident := auth.GetIdentity(c)
	board, err := h.boardSvc.Create(c.Request.Context(), req.Title, ident.ID, req.IsPublic)
	if err != nil {
		log.Error().Err(err).Uint("owner_id", ident.ID).Str("title", req.Title).Msg("create board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create board"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board})
}

func (h *Handler) ListBoards(c *gin.Context) {
	ident := auth.GetIdentity(c)
	boards, err := h.boardSvc.List(c.Request.Context(), ident.ID, 100)
	if err != nil {
		log.Error().Err(err).Msg("list boards")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list boards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

func (h *Handler) GetBoard(c *gin.Context) {
	ident := auth.GetIdentity(c)
	board, err := h.boardSvc.Get(c.Request.Context(), c.Param("id"), ident.ID)
	if err != nil {
		boardError(c, err, "get board")
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board})
}

// ListElements serves the persisted snapshot a reloading client starts from.
func (h *Handler) ListElements(c *gin.Context) {
	ident := auth.GetIdentity(c)
	elements, err := h.boardSvc.Elements(c.Request.Context(), c.Param("id"), ident.ID)
	if err != nil {
		boardError(c, err, "list elements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"elements": elements})
}

func (h *Handler) ListMessages(c *gin.Context) {
	ident := auth.GetIdentity(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	var beforeID uint
	if bid := c.Query("before_id"); bid != "" {
		if v, err := strconv.Atoi(bid); err == nil && v > 0 {
			beforeID = uint(v)
		}
	}
	msgs, err := h.msgSvc.ListByBoard(c.Request.Context(), c.Param("id"), ident.ID, limit, beforeID)
	if err != nil {
		boardError(c, err, "list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) AddCollaborator(c *gin.Context) {
	var req struct {
		UserID uint        `json:"userId"`
		Role   models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEditor
	}
	ident := auth.GetIdentity(c)
	if err := h.boardSvc.AddCollaborator(c.Request.Context(), c.Param("id"), ident.ID, req.UserID, req.Role); err != nil {
		boardError(c, err, "add collaborator")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
