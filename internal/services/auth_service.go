package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AccessClaims is the JWT payload issued at login and parsed on every
// authenticated request (HTTP bearer and WebSocket query token alike).
type AccessClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	expiry    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, expiry time.Duration) *AuthService {
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &AuthService{userRepo: userRepo, jwtSecret: []byte(jwtSecret), expiry: expiry}
}

// Register creates a user with a bcrypt-hashed password. A taken email
// surfaces as ErrAlreadyExists via the unique index.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, fmt.Errorf("%w: invalid email", chat_errors.ErrInvalidInput)
	}
	if len(password) < 6 {
		return user.User{}, fmt.Errorf("%w: password too short", chat_errors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, &u); err != nil {
		return user.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Login verifies credentials and issues a signed access token. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (user.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return user.User{}, "", chat_errors.ErrUnauthorized
		}
		return user.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", chat_errors.ErrUnauthorized
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return user.User{}, "", err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil {
		return user.User{}, "", err
	}

	u.PasswordHash = ""
	return u, token, nil
}

func (s *AuthService) issueToken(userID int64) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseAccessToken validates the token signature and expiry, returning the
// embedded claims.
func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	claims := AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, chat_errors.ErrUnauthorized
	}
	if claims.UserID == 0 {
		return AccessClaims{}, chat_errors.ErrUnauthorized
	}
	return claims, nil
}
