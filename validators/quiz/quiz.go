package quizValidator

import (
	"time"

	"github.com/tgaisser/ocb/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// QuizAnswer is one submitted answer.
type QuizAnswer struct {
	Id     string `json:"id" validate:"required"`
	Answer string `json:"answer"`
}

// GradeRequest is the body of the grading endpoint.
type GradeRequest struct {
	Answers   []QuizAnswer `json:"answers" validate:"required,dive"`
	StartTime *time.Time   `json:"startTime"`
}

// GradeQuiz validates a grading submission.
func GradeQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GradeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"answers": "Each answer needs a question id!",
			})
		}
		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}
