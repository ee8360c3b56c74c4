package notesValidator

import (
	"github.com/tgaisser/ocb/middleware"

	"github.com/gofiber/fiber/v2"
)

// NoteRequest is the body of PUT /notes/:courseId/lectures/:lectureId.
type NoteRequest struct {
	Text *string `json:"text"`
}

// SaveNote validates the note body. An empty string is a valid note (the user
// cleared it), a missing field is not.
func SaveNote() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(NoteRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Text == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"text": "Note text is required!",
			})
		}
		c.Locals("validatedNote", reqData)
		return c.Next()
	}
}
