package learnerRoutes

import (
	learnerController "maitree/controllers/learner"
	walletController "maitree/controllers/wallet"
	"maitree/middleware"
	learnerValidator "maitree/validators/learner"

	"github.com/gofiber/fiber/v2"
)

func SetupLearnerRoutes(app *fiber.App, ctl *learnerController.Controller, wallet *walletController.Controller) {
	learnerGroup := app.Group("/learner", middleware.JWTMiddleware)

	learnerGroup.Get("/progress", ctl.GetProgress)
	learnerGroup.Get("/level-status", ctl.GetLevelStatus)
	learnerGroup.Get("/lessons/:level", ctl.GetLessons)
	learnerGroup.Post("/lessons/:id/complete", ctl.CompleteLesson)
	learnerGroup.Get("/quiz/:level/:quizNumber", ctl.GetQuiz)
	learnerGroup.Post("/quiz/:level/:quizNumber/submit", learnerValidator.SubmitQuiz(), ctl.SubmitQuiz)

	// Wallet
	learnerGroup.Get("/wallet", wallet.GetWallet)
	learnerGroup.Get("/redemptions", wallet.ListRedemptions)
	learnerGroup.Post("/redemptions", learnerValidator.RequestRedemption(), wallet.RequestRedemption)
}
