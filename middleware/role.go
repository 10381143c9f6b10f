package middleware

import "github.com/gofiber/fiber/v2"

// RequireRole only lets requests through whose token carries role.
// It must run after JWTMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userId").(uint); !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if got, _ := c.Locals("role").(string); got != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}
