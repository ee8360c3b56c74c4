package courseValidator

import (
	"strings"

	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// EnrollmentRequest is the body of PUT /courses/:courseId.
type EnrollmentRequest struct {
	Enrolled         *bool  `json:"enrolled" validate:"required"`
	WithdrawalReason *int   `json:"withdrawalReason"`
	StudyGroupId     string `json:"studyGroupId"`
}

// InquiryRequest is the body of PUT /courses/:courseId/inquiries.
type InquiryRequest struct {
	Email        string `json:"email" validate:"required,email"`
	StudyGroupId string `json:"studyGroupId"`
}

// VideoEvent is one playback position report.
type VideoEvent struct {
	Position  *int  `json:"position" validate:"required,gte=0"`
	EventTime int64 `json:"eventTime"`
}

// BulkVideoRequest is the body of the interval-fold endpoint.
type BulkVideoRequest struct {
	Intervals []store.VideoInterval `json:"intervals" validate:"required,min=1"`
}

// FileDownloadRequest carries the downloaded file's url.
type FileDownloadRequest struct {
	Url string `json:"url" validate:"required"`
}

// CourseId requires a non-empty :courseId path parameter.
func CourseId() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseId := strings.TrimSpace(c.Params("courseId"))
		if courseId == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}
		c.Locals("courseId", courseId)
		return c.Next()
	}
}

// parseUtm pulls attribution codes off the query string; absent codes are fine.
func parseUtm(c *fiber.Ctx) *models.UtmInfo {
	utm := new(models.UtmInfo)
	if err := c.QueryParser(utm); err != nil || utm.IsEmpty() {
		return nil
	}
	return utm
}

// EnrollCourse validates the enrollment/withdrawal body.
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EnrollmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := map[string]string{}
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnrollment", reqData)
		c.Locals("utm", parseUtm(c))
		return c.Next()
	}
}

// InquireCourse validates the anonymous inquiry body.
func InquireCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(InquiryRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				if fieldErr.Field() == "Email" {
					errors["email"] = "A valid email is required!"
				} else {
					errors[fieldErr.Field()] = "Invalid value!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInquiry", reqData)
		c.Locals("utm", parseUtm(c))
		return c.Next()
	}
}

// VideoProgress validates the per-event position batch.
func VideoProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var events []VideoEvent
		if err := c.BodyParser(&events); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(events) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"events": "At least one position event is required!",
			})
		}
		for _, event := range events {
			if err := validate.Struct(event); err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{
					"position": "Each event needs a non-negative position!",
				})
			}
		}
		c.Locals("validatedVideoEvents", events)
		return c.Next()
	}
}

// BulkVideoProgress validates the watched-interval fold body.
func BulkVideoProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkVideoRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"intervals": "At least one watched interval is required!",
			})
		}
		for _, iv := range reqData.Intervals {
			if iv.End < iv.Start || iv.Start < 0 {
				return middleware.ValidationErrorResponse(c, map[string]string{
					"intervals": "Intervals must have 0 <= start <= end!",
				})
			}
		}
		c.Locals("validatedBulkVideo", reqData)
		return c.Next()
	}
}

// FileDownload validates the download-log body.
func FileDownload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(FileDownloadRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"url": "The downloaded file url is required!",
			})
		}
		c.Locals("validatedFileDownload", reqData)
		return c.Next()
	}
}
