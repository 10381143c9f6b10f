package authController

import (
	"log"

	"maitree/middleware"
	"maitree/models"
	"maitree/services/account"
	authValidator "maitree/validators/auth"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	accounts *account.Service
}

func New(accounts *account.Service) *Controller {
	return &Controller{accounts: accounts}
}

func learnerView(l *models.Learner) fiber.Map {
	return fiber.Map{
		"id":            l.ID,
		"name":          l.Name,
		"phone":         l.Phone,
		"email":         l.Email,
		"role":          l.Role,
		"wallet":        l.Wallet,
		"referralCode":  l.ReferralCode,
		"referralCount": l.ReferralCount,
		"currentLevel":  l.CurrentLevel,
	}
}

func (ctl *Controller) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	learner, err := ctl.accounts.Register(account.RegisterInput{
		Name:         reqData.Name,
		Phone:        reqData.Phone,
		Email:        reqData.Email,
		Password:     reqData.Password,
		ReferralCode: reqData.ReferralCode,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully!", fiber.Map{
		"user": learnerView(learner),
	})
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	learner, sessionID, err := ctl.accounts.Login(reqData.Login(), reqData.Password)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(learner.ID, learner.Role, sessionID)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token":        token,
		"sessionToken": sessionID,
		"userType":     learner.Role,
		"user":         learnerView(learner),
	})
}

func (ctl *Controller) ValidateSession(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	sessionID, _ := c.Locals("sessionId").(string)

	if _, err := ctl.accounts.ValidateSession(userID, sessionID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session valid.", fiber.Map{"valid": true})
}

func (ctl *Controller) ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.IdentifierRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	issued, err := ctl.accounts.ForgotPassword(reqData.Value())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset link sent to your email", issued)
}

func (ctl *Controller) VerifyResetToken(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetToken").(*authValidator.TokenRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := ctl.accounts.VerifyResetToken(reqData.Token); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token verified successfully", fiber.Map{"verified": true})
}

func (ctl *Controller) ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := ctl.accounts.ResetPassword(reqData.Token, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully. Please login with your new password", nil)
}

func (ctl *Controller) ChangePassword(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedChangePassword").(*authValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := ctl.accounts.ChangePassword(userID, reqData.CurrentPassword, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully", nil)
}
