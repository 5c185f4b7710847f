package dto

import (
	"time"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
)

type UserOutput struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserDetailOutput struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateRoleInput struct {
	Role string `json:"role"`
}

func NewUserOutput(u *domain.User) UserOutput {
	return UserOutput{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}

func NewUserDetailOutput(u *domain.User) UserDetailOutput {
	return UserDetailOutput{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
