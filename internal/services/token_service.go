package services

import (
	"errors"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded payload of an issued token. Type discrimination is
// the caller's job: Decode never rejects a token for its typ.
type Claims struct {
	UserID uuid.UUID
	Role   string
	Type   string
}

// TokenService issues and validates signed, time-bound credentials. The
// signing key is loaded once at startup; rotating it invalidates all
// outstanding tokens.
type TokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.JWTSecret),
		accessExpiry:  cfg.JWTAccessExpiry,
		refreshExpiry: cfg.JWTRefreshExpiry,
	}
}

func (s *TokenService) IssueAccessToken(userID uuid.UUID, role string) (string, error) {
	return s.issue(userID, role, TokenTypeAccess, s.accessExpiry)
}

func (s *TokenService) IssueRefreshToken(userID uuid.UUID, role string) (string, error) {
	return s.issue(userID, role, TokenTypeRefresh, s.refreshExpiry)
}

func (s *TokenService) issue(userID uuid.UUID, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"typ":  typ,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	role, _ := mapClaims["role"].(string)
	typ, _ := mapClaims["typ"].(string)

	return &Claims{UserID: userID, Role: role, Type: typ}, nil
}
