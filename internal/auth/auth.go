package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"boardsync/internal/config"
	"boardsync/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// Identity is the resolved principal attached to a verified connection.
type Identity struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func GenerateAccessToken(userID uint, secret string, ttlMinutes int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseAccessToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Verifier resolves bearer credentials to identities. It is the only piece of
// the auth machinery the sync layer consumes.
type Verifier struct {
	db     *gorm.DB
	secret string
}

func NewVerifier(db *gorm.DB, secret string) *Verifier {
	return &Verifier{db: db, secret: secret}
}

// Verify validates a bearer token and loads the identity behind it.
func (v *Verifier) Verify(token string) (*Identity, error) {
	claims, err := ParseAccessToken(token, v.secret)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := v.db.First(&user, claims.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: user.ID, Username: user.Username, AvatarURL: user.AvatarURL}, nil
}

// BearerFromRequest extracts the credential from the Authorization header or,
// for websocket handshakes where headers are awkward, a token query param.
func BearerFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return r.URL.Query().Get("token")
}

func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func SaveRefreshToken(db *gorm.DB, userID uint, token string, expiresAt time.Time) error {
	rt := models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return db.Create(&rt).Error
}

func ValidateRefreshToken(db *gorm.DB, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := db.Where("token = ? AND revoked_at IS NULL AND expires_at > ?", token, time.Now()).First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func RevokeRefreshToken(db *gorm.DB, token string) error {
	now := time.Now()
	return db.Model(&models.RefreshToken{}).Where("token = ?", token).Update("revoked_at", &now).Error
}

// Middleware guards the REST surface. The websocket handshake uses Verifier
// directly instead, so a rejected upgrade never registers handlers.
func Middleware(cfg config.Config, db *gorm.DB) gin.HandlerFunc {
	v := NewVerifier(db, cfg.JWTSecret)
	return func(c *gin.Context) {
		token := BearerFromRequest(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		ident, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("identity", ident)
		c.Next()
	}
}

// GetIdentity returns the identity set by Middleware, or nil.
func GetIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get("identity"); ok {
		if id, ok2 := v.(*Identity); ok2 {
			return id
		}
	}
	return nil
}
