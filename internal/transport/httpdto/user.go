package httpdto

import (
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/user"
)

// UserDTO is the public shape of a user: no credentials, no internals.
type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	UF        string `json:"uf,omitempty"`
	City      string `json:"city,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

func FromUser(u user.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Bio:       u.Bio,
		UF:        u.UF,
		City:      u.City,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func FromUsers(users []user.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, FromUser(u))
	}
	return dtos
}

// UpdateProfileRequest is used for PATCH /users/me. Absent fields are left
// unchanged.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
	UF   *string `json:"uf,omitempty"`
	City *string `json:"city,omitempty"`
}
