package userValidator

import (
	"github.com/tgaisser/ocb/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// SettingsRequest is the body of PUT /users/me/preferences.
type SettingsRequest struct {
	ProgressEmailFrequency string `json:"progressReportFrequency" validate:"omitempty,oneof=never weekly monthly"`
	EmailStatus            string `json:"emailStatus" validate:"omitempty,oneof=subscribed unsubscribed"`
	PreferAudioLectures    *bool  `json:"preferAudioLectures"`
	DataSaver              *bool  `json:"dataSaver"`
	SubjectPreference      string `json:"subjectPreference"`
}

// SubjectRequest is the body of PUT /users/me/preferences/subject.
type SubjectRequest struct {
	Subject *string `json:"subject" validate:"required"`
}

// PreferAudioRequest is the body of PUT /users/me/preferences/preferAudio.
type PreferAudioRequest struct {
	PreferAudio *bool `json:"preferAudio" validate:"required"`
}

// Settings validates the full preferences body.
func Settings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SettingsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedSettings", reqData)
		return c.Next()
	}
}

// Subject validates the subject-preference body.
func Subject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubjectRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"subject": "Subject is required!",
			})
		}
		c.Locals("validatedSubject", reqData)
		return c.Next()
	}
}

// PreferAudio validates the audio-preference body.
func PreferAudio() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PreferAudioRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"preferAudio": "preferAudio is required!",
			})
		}
		c.Locals("validatedPreferAudio", reqData)
		return c.Next()
	}
}
