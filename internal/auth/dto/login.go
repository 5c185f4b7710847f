package dto

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Code is a TOTP or backup code, required only for accounts with a
	// verified two-factor enrollment.
	Code string `json:"code"`
}
