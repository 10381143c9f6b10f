package learnerController

import (
	"maitree/middleware"
	"maitree/models"
	"maitree/services/progression"
	learnerValidator "maitree/validators/learner"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	engine *progression.Engine
}

func New(engine *progression.Engine) *Controller {
	return &Controller{engine: engine}
}

func levelParam(c *fiber.Ctx) (models.Level, bool) {
	level := models.Level(c.Params("level"))
	return level, level.Valid()
}

func invalidLevel(c *fiber.Ctx) error {
	return middleware.ValidationErrorResponse(c, map[string]string{
		"level": "Level must be one of beginner, medium or expert!",
	})
}

// GetProgress returns the profile with completed lessons and passed quizzes
func (ctl *Controller) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	progress, err := ctl.engine.GetProgress(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched!", progress)
}

func (ctl *Controller) GetLevelStatus(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	status, err := ctl.engine.GetLevelStatus(userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Level status fetched!", fiber.Map{"levelStatus": status})
}

func (ctl *Controller) GetLessons(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	level, ok := levelParam(c)
	if !ok {
		return invalidLevel(c)
	}

	lessons, err := ctl.engine.GetLessonsWithStatus(userID, level)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched!", fiber.Map{"lessons": lessons})
}

func (ctl *Controller) CompleteLesson(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	lessonID, err := c.ParamsInt("id")
	if err != nil || lessonID <= 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"id": "Lesson ID must be a positive number!"})
	}

	res, err := ctl.engine.CompleteLesson(userID, uint(lessonID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Lesson completed!"
	if res.AlreadyCompleted {
		message = "Lesson already completed"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
}

func (ctl *Controller) GetQuiz(c *fiber.Ctx) error {
	level, ok := levelParam(c)
	if !ok {
		return invalidLevel(c)
	}
	quizNumber, err := c.ParamsInt("quizNumber")
	if err != nil || quizNumber <= 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"quizNumber": "Quiz number must be a positive number!"})
	}

	quiz, err := ctl.engine.GetQuiz(level, quizNumber)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched!", fiber.Map{"quiz": quiz})
}

func (ctl *Controller) SubmitQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	level, ok := levelParam(c)
	if !ok {
		return invalidLevel(c)
	}
	quizNumber, err := c.ParamsInt("quizNumber")
	if err != nil || quizNumber <= 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"quizNumber": "Quiz number must be a positive number!"})
	}
	reqData, ok := c.Locals("validatedQuizSubmission").(*learnerValidator.SubmitQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	res, err := ctl.engine.SubmitQuiz(userID, level, quizNumber, reqData.Answers)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Quiz failed. Score at least 60% to pass."
	if res.Passed {
		message = "Quiz passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
}
