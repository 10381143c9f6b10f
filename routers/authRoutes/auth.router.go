package authRoutes

import (
	authController "maitree/controllers/auth"
	"maitree/middleware"
	authValidator "maitree/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), ctl.Register)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
	authGroup.Post("/validate-session", middleware.JWTMiddleware, ctl.ValidateSession)
	authGroup.Post("/forgot-password", authValidator.ForgotPassword(), ctl.ForgotPassword)
	authGroup.Post("/verify-reset-token", authValidator.VerifyResetToken(), ctl.VerifyResetToken)
	authGroup.Post("/reset-password", authValidator.ResetPassword(), ctl.ResetPassword)
	authGroup.Put("/change-password", middleware.JWTMiddleware, authValidator.ChangePassword(), ctl.ChangePassword)
}
