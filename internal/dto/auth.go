package dto

// RegisterRequest captures sign-up input.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest captures credential input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse contains the issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UpdateProfileRequest patches the caller's own account.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}
