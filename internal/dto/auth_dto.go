package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Username     string  `json:"username"  validate:"required,min=1,max=150"`
	FullName     string  `json:"full_name" validate:"required,min=2,max=100"`
	Email        *string `json:"email"     validate:"omitempty,email"`
	Password     string  `json:"password"  validate:"required,min=8"`
	Role         string  `json:"role"      validate:"required,oneof=gate operator supervisor admin"`
	BuyingCentre *string `json:"buying_centre"`
}

type UpdateUserRequest struct {
	FullName     string  `json:"full_name"     validate:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Role         string  `json:"role"          validate:"omitempty,oneof=gate operator supervisor admin"`
	BuyingCentre *string `json:"buying_centre"`
	Password     string  `json:"password"      validate:"omitempty,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	Email        *string `json:"email"`
	Role         string  `json:"role"`
	BuyingCentre *string `json:"buying_centre"`
	Active       bool    `json:"active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}
