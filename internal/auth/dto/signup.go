package dto

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
