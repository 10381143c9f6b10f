// Package validators holds the shared struct validation used by the
// per-area request validators.
package validators

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"maitree/middleware"
	"maitree/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return models.Level(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("paidplan", func(fl validator.FieldLevel) bool {
		return models.Plan(fl.Field().String()).Paid()
	})
	_ = v.RegisterValidation("redemptionstatus", func(fl validator.FieldLevel) bool {
		return models.RedemptionStatus(fl.Field().String()).Rank() >= 0
	})
	// Surrounding spaces are trimmed by the service; inner ones never form a valid id
	_ = v.RegisterValidation("paymentid", func(fl validator.FieldLevel) bool {
		id := strings.TrimSpace(fl.Field().String())
		return id != "" && strings.IndexFunc(id, unicode.IsSpace) < 0
	})
	return v
}

// Struct validates s and returns a field to message map, empty when valid
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["request"] = "Invalid request!"
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", fe.Field(), fe.Param())
	case "email":
		return "Invalid email!"
	case "numeric", "len":
		return "Invalid mobile number!"
	case "level":
		return "Level must be one of beginner, medium or expert!"
	case "paidplan":
		return "Subscription type must be monthly or lifetime!"
	case "paymentid":
		return "Invalid payment ID!"
	case "redemptionstatus":
		return "Status must be one of pending, processing or processed!"
	}
	return fmt.Sprintf("%s is invalid!", fe.Field())
}

// Body parses the JSON body into reqData, validates it and stores it in
// c.Locals under key for the controller.
func Body(c *fiber.Ctx, reqData interface{}, key string) error {
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errs := Struct(reqData); len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}
	c.Locals(key, reqData)
	return c.Next()
}
