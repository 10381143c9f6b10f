package routers

import (
	authController "maitree/controllers/auth"
	learnerController "maitree/controllers/learner"
	subscriptionController "maitree/controllers/subscription"
	walletController "maitree/controllers/wallet"
	"maitree/routers/adminRoutes"
	"maitree/routers/authRoutes"
	"maitree/routers/learnerRoutes"
	"maitree/routers/subscriptionRoutes"
	"maitree/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts every route group on app
func SetupRoutes(app *fiber.App, svc *services.Services) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Maitree Marathi API is running")
	})

	wallet := walletController.New(svc.Wallet)

	authRoutes.SetupAuthRoutes(app, authController.New(svc.Accounts))
	learnerRoutes.SetupLearnerRoutes(app, learnerController.New(svc.Progression), wallet)
	subscriptionRoutes.SetupSubscriptionRoutes(app, subscriptionController.New(svc.Subscriptions, svc.Payments, svc.Prices))
	adminRoutes.SetupAdminRoutes(app, wallet)
}
