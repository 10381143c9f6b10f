package authValidator

import (
	"maitree/validators"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"required_without=Email,omitempty,numeric,len=10"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"required,min=8"`
	ReferralCode string `json:"referralCode" validate:"omitempty,max=20"`
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(RegisterRequest), "validatedRegister")
	}
}

// LoginRequest accepts a phone number or an email in Identifier.
// Phone is still read for older clients.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required_without=Phone"`
	Phone      string `json:"phone"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginRequest) Login() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Phone
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(LoginRequest), "validatedLogin")
	}
}

type IdentifierRequest struct {
	Identifier string `json:"identifier" validate:"required_without=Phone"`
	Phone      string `json:"phone"`
}

func (r *IdentifierRequest) Value() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Phone
}

// ForgotPassword validator middleware
func ForgotPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(IdentifierRequest), "validatedForgotPassword")
	}
}

type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyResetToken validator middleware
func VerifyResetToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(TokenRequest), "validatedResetToken")
	}
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ResetPassword validator middleware
func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(ResetPasswordRequest), "validatedResetPassword")
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

// ChangePassword validator middleware
func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(ChangePasswordRequest), "validatedChangePassword")
	}
}
