package adminRoutes

import (
	walletController "maitree/controllers/wallet"
	"maitree/middleware"
	"maitree/models"
	adminValidator "maitree/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, wallet *walletController.Controller) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/redemptions", wallet.ListAllRedemptions)
	adminGroup.Put("/redemptions/:id/status", adminValidator.UpdateRedemptionStatus(), wallet.UpdateRedemptionStatus)
}
