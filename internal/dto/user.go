package dto

import (
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// RequestEmailRequest asks for the confirmation email to be re-sent.
type RequestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Confirmed bool   `json:"confirmed"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
	}
	if user.Avatar != nil {
		resp.Avatar = *user.Avatar
	}
	return resp
}
