package models

// User is the authenticated host as reported by the backend.
type User struct {
	ID         string `json:"id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name"`
	UserID     string `json:"userId" binding:"required"`
	SharableID string `json:"sharableId" binding:"required"`
	Timezone   string `json:"timezone,omitempty"`
}

// LoginRequest holds host credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignupRequest registers a new host.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Timezone string `json:"timezone" binding:"required,tzoffset"`
}
