package adminValidator

import (
	"maitree/validators"

	"github.com/gofiber/fiber/v2"
)

type RedemptionStatusRequest struct {
	Status string `json:"status" validate:"required,redemptionstatus"`
	Notes  string `json:"notes" validate:"max=500"`
}

// UpdateRedemptionStatus validator middleware
func UpdateRedemptionStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Body(c, new(RedemptionStatusRequest), "validatedRedemptionStatus")
	}
}
