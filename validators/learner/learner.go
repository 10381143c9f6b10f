package learnerValidator

import (
	"maitree/validators"

	"github.com/gofiber/fiber/v2"
)

type SubmitQuizRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

// SubmitQuiz validator middleware
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(SubmitQuizRequest), "validatedQuizSubmission")
	}
}

type RedemptionRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// RequestRedemption validator middleware
func RequestRedemption() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(RedemptionRequest), "validatedRedemption")
	}
}
