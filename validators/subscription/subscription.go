package subscriptionValidator

import (
	"maitree/validators"

	"github.com/gofiber/fiber/v2"
)

type PaymentRequestRequest struct {
	SubscriptionType string `json:"subscriptionType" validate:"required,paidplan"`
}

// PaymentRequest validator middleware
func PaymentRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(PaymentRequestRequest), "validatedPaymentRequest")
	}
}

type ActivateRequest struct {
	SubscriptionType string `json:"subscriptionType" validate:"required,paidplan"`
	PaymentID        string `json:"paymentId" validate:"required,max=100,paymentid"`
}

// Activate validator middleware
func Activate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(ActivateRequest), "validatedActivation")
	}
}

type CheckAccessRequest struct {
	Level        string `json:"level" validate:"required,level"`
	LessonNumber int    `json:"lessonNumber" validate:"required,min=1"`
}

// CheckAccess validator middleware
func CheckAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(CheckAccessRequest), "validatedAccessCheck")
	}
}
