package subscriptionController

import (
	"fmt"

	"maitree/middleware"
	"maitree/models"
	"maitree/services/payment"
	"maitree/services/subscription"
	subscriptionValidator "maitree/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	subs     *subscription.Manager
	payments *payment.Client
	prices   map[models.Plan]int64
}

func New(subs *subscription.Manager, payments *payment.Client, prices map[models.Plan]int64) *Controller {
	return &Controller{subs: subs, payments: payments, prices: prices}
}

// CreatePaymentRequest opens a gateway checkout for the chosen plan
func (ctl *Controller) CreatePaymentRequest(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedPaymentRequest").(*subscriptionValidator.PaymentRequestRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	learner, err := ctl.subs.LoadLearner(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	plan := models.Plan(reqData.SubscriptionType)

	req := payment.PaymentRequest{
		Amount:    ctl.prices[plan],
		Purpose:   fmt.Sprintf("%s subscription", plan),
		BuyerName: learner.Name,
	}
	if learner.Email != nil {
		req.Email = *learner.Email
	}
	if learner.Phone != nil {
		req.Phone = *learner.Phone
	}

	res, err := ctl.payments.CreatePaymentRequest(c.UserContext(), req)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment request created!", fiber.Map{
		"paymentRequestId": res.ID,
		"paymentUrl":       res.LongURL,
		"amount":           req.Amount,
	})
}

func (ctl *Controller) Activate(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedActivation").(*subscriptionValidator.ActivateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	activation, err := ctl.subs.Activate(c.UserContext(), userID, models.Plan(reqData.SubscriptionType), reqData.PaymentID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription activated successfully", fiber.Map{"subscription": activation})
}

func (ctl *Controller) Status(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	status, err := ctl.subs.Status(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription status fetched!", fiber.Map{"subscription": status})
}

func (ctl *Controller) CheckAccess(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedAccessCheck").(*subscriptionValidator.CheckAccessRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	access, err := ctl.subs.CheckAccess(userID, models.Level(reqData.Level), reqData.LessonNumber)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked!", access)
}
