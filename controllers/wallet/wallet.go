package walletController

import (
	"maitree/middleware"
	"maitree/models"
	"maitree/services/wallet"
	adminValidator "maitree/validators/admin"
	learnerValidator "maitree/validators/learner"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	wallet *wallet.Service
}

func New(svc *wallet.Service) *Controller {
	return &Controller{wallet: svc}
}

// GetWallet returns the balance, referral stats and transaction history
func (ctl *Controller) GetWallet(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	summary, err := ctl.wallet.GetWallet(userID, page, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet fetched!", summary)
}

func (ctl *Controller) RequestRedemption(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedRedemption").(*learnerValidator.RedemptionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	redemption, err := ctl.wallet.RequestRedemption(userID, reqData.Amount)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Redemption request submitted!", fiber.Map{"redemption": redemption})
}

func (ctl *Controller) ListRedemptions(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	redemptions, err := ctl.wallet.ListRedemptions(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemptions fetched!", fiber.Map{"redemptions": redemptions})
}

// ListAllRedemptions is the admin queue, filtered by ?status=
func (ctl *Controller) ListAllRedemptions(c *fiber.Ctx) error {
	redemptions, err := ctl.wallet.ListAllRedemptions(models.RedemptionStatus(c.Query("status")))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemptions fetched!", fiber.Map{"redemptions": redemptions})
}

func (ctl *Controller) UpdateRedemptionStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"id": "Redemption ID must be a positive number!"})
	}
	reqData, ok := c.Locals("validatedRedemptionStatus").(*adminValidator.RedemptionStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	redemption, err := ctl.wallet.UpdateRedemptionStatus(uint(id), models.RedemptionStatus(reqData.Status), reqData.Notes)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemption status updated!", fiber.Map{"redemption": redemption})
}
