package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// BlobStore persists binary objects (avatars) and returns their public URL.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Name *string
	Bio  *string
	UF   *string
	City *string
}

type UserService struct {
	repo  repository.UserRepository
	blobs BlobStore
}

func NewUserService(repo repository.UserRepository, blobs BlobStore) *UserService {
	return &UserService{repo: repo, blobs: blobs}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (user.User, error) {
	if id == 0 {
		return user.User{}, chat_errors.ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ListExcept returns every user but the caller, for the new-conversation
// picker.
func (s *UserService) ListExcept(ctx context.Context, excludeID int64) ([]user.User, error) {
	users, err := s.repo.ListExcept(ctx, excludeID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return user.User{}, fmt.Errorf("%w: name cannot be empty", chat_errors.ErrInvalidInput)
		}
		u.Name = name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.UF != nil {
		u.UF = strings.ToUpper(strings.TrimSpace(*update.UF))
	}
	if update.City != nil {
		u.City = *update.City
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// SaveProfilePicture uploads the avatar and stores its URL on the profile.
func (s *UserService) SaveProfilePicture(ctx context.Context, id int64, contentType string, body io.Reader) (user.User, error) {
	if s.blobs == nil {
		return user.User{}, chat_errors.ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	key := fmt.Sprintf("avatars/%d/%d", id, time.Now().UnixNano())
	url, err := s.blobs.Put(ctx, key, contentType, body)
	if err != nil {
		return user.User{}, err
	}

	u.AvatarURL = url
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}
