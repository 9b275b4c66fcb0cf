package models

type User struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	HashedPassword string `json:"hashed_password"`
}

type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type TokenUser struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        TokenUser `json:"user"`
}
