package dto

import (
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never
// part of any response shape.
type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse wraps the user collection under its named key.
type UserListResponse struct {
	Users []UserDTO `json:"users"`
}

// TokenResponse is the login response carrying the bearer credential.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts users to the wrapped list response
func ToUserListResponse(users []models.User) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{Users: items}
}
