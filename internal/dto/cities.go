package dto

// CityInput is the admin payload for creating or updating a city.
type CityInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// UserAdminInput is the admin payload for creating or patching an account.
type UserAdminInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
}
