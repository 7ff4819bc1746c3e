package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// AuthService validates identity tokens; issuing is only used by tooling and debug mode
type AuthService struct {
	jwtSecret []byte
	issuer    string
	expire    time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.JWTConfig) *AuthService {
	expire := cfg.Expire
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &AuthService{
		jwtSecret: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		expire:    expire,
	}
}

// IssueToken signs a token for a user; a missing uid gets a fresh one
func (s *AuthService) IssueToken(uid, email string, role model.Role) (*model.TokenResponse, error) {
	if uid == "" {
		uid = uuid.New().String()
	}
	if role == "" {
		role = model.RoleStudent
	}
	if role.Rank() == 0 {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	now := time.Now()
	claims := &model.UserClaims{
		UserID: uid,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{Token: tokenString, UserID: uid}, nil
}

// ValidateToken validates a user JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" || claims.Role.Rank() == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
