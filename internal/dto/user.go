package dto

// UpdateUserRequest applies a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,max=72"`
}
