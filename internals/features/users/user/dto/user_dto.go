// file: internals/features/users/user/dto/user_dto.go
package dto

import (
	"time"

	usermodel "athletiq_backend/internals/features/users/user/model"
)

type UpdateProfileRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type SignWaiverRequest struct {
	// explicit acknowledgement, not inferred from the request existing
	Accepted bool `json:"accepted" validate:"required,eq=true"`
}

type ProfileResponse struct {
	ID             string     `json:"id"`
	UserName       string     `json:"user_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Role           string     `json:"role"`
	WaiverSignedAt *time.Time `json:"waiver_signed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func FromModel(u *usermodel.UserModel) ProfileResponse {
	return ProfileResponse{
		ID:             u.ID.String(),
		UserName:       u.UserName,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		WaiverSignedAt: u.WaiverSignedAt,
		CreatedAt:      u.CreatedAt,
	}
}
