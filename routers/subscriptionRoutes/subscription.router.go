package subscriptionRoutes

import (
	subscriptionController "maitree/controllers/subscription"
	"maitree/middleware"
	subscriptionValidator "maitree/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(app *fiber.App, ctl *subscriptionController.Controller) {
	subscriptionGroup := app.Group("/subscription", middleware.JWTMiddleware)

	subscriptionGroup.Post("/payment-request", subscriptionValidator.PaymentRequest(), ctl.CreatePaymentRequest)
	subscriptionGroup.Post("/activate", subscriptionValidator.Activate(), ctl.Activate)
	subscriptionGroup.Get("/status", ctl.Status)
	subscriptionGroup.Post("/check-access", subscriptionValidator.CheckAccess(), ctl.CheckAccess)
}
