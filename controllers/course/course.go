package controllers

import (
	"errors"
	"log"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"
	"github.com/tgaisser/ocb/utils"
	courseValidator "github.com/tgaisser/ocb/validators/course"

	"github.com/gofiber/fiber/v2"
)

var hubspot *utils.HubspotClient

// crmClient lazily builds the shared HubSpot client from config.
func crmClient() *utils.HubspotClient {
	if hubspot == nil {
		cfg := config.AppConfig
		hubspot = utils.NewHubspotClient(
			cfg.HubspotPrivateAppToken,
			cfg.HubspotContactCreateUrl,
			cfg.HubspotContactCompletionUrl,
			cfg.HubspotContactRetrieveUrl,
		)
	}
	return hubspot
}

func Health(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
}

// GetUserCourses lists the caller's active enrollments.
func GetUserCourses(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courses, err := store.GetUserCourses(database.Database.Db, userId)
	if err != nil {
		log.Printf("Failed to list courses for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// EnrollCourse enrolls or withdraws the caller and syncs the CRM afterwards.
func EnrollCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	reqData := c.Locals("validatedEnrollment").(*courseValidator.EnrollmentRequest)
	utm, _ := c.Locals("utm").(*models.UtmInfo)

	db := database.Database.Db

	course, err := store.GetCourse(db, courseId)
	if err != nil {
		log.Printf("Failed to look up course %s: %v", courseId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to enroll! Please try again later.", nil)
	}
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	enroll := *reqData.Enrolled
	enrollment, err := store.MarkCourseEnrollment(db, userId, courseId, enroll, reqData.WithdrawalReason, false, utm)
	if errors.Is(err, store.ErrNotEnrolled) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}
	if err != nil {
		message := "Unable to enroll! Please try again later."
		if !enroll {
			message = "Unable to withdraw! Please try again later."
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, message, nil)
	}

	if reqData.StudyGroupId != "" && enroll {
		if sub, err := store.MarkSubEnrollment(db, userId, courseId, reqData.StudyGroupId, true, nil, utm); err == nil {
			enrollment.StudyGroupId = sub.StudyGroupId
		}
	}

	// CRM sync happens after the response; failures only log
	if email, _ := c.Locals("email").(string); email != "" && course.HubspotKey != "" {
		go crmClient().SyncEnrollment(email, course.HubspotKey, enroll)
	}

	message := "Enrolled in course successfully!"
	if !enroll {
		message = "Withdrawn from course successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, enrollment)
}

// InquireCourse records anonymous interest in a course.
func InquireCourse(c *fiber.Ctx) error {
	courseId := c.Locals("courseId").(string)
	reqData := c.Locals("validatedInquiry").(*courseValidator.InquiryRequest)
	utm, _ := c.Locals("utm").(*models.UtmInfo)

	inquiry, err := store.MarkCourseInquiry(database.Database.Db, reqData.Email, courseId, false, reqData.StudyGroupId, utm)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to record your interest! Please try again later.", nil)
	}

	go func() {
		if err := crmClient().SubmitContact(utils.ContactSubmission{
			Email:     reqData.Email,
			Hutk:      c.Cookies("hubspotutk"),
			IpAddress: c.IP(),
			PageUrl:   c.Get("Referer"),
			Utm:       utm,
		}); err != nil {
			log.Printf("HubSpot contact submission failed for %s: %v", reqData.Email, err)
		}
	}()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thanks for your interest!", inquiry)
}

// RedeemEarlyAccess flips early access on the caller's enrollment when the token
// matches.
func RedeemEarlyAccess(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)

	token := c.Params("token")
	if token == "" || token != config.AppConfig.EarlyAccessToken {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid early access token!", nil)
	}

	err := store.SetEarlyAccessOnExistingEnrollment(database.Database.Db, userId, courseId)
	if errors.Is(err, store.ErrNotEnrolled) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}
	if err != nil {
		log.Printf("Failed to set early access for user %s course %s: %v", userId, courseId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to redeem early access! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Early access granted!", nil)
}

// GetWithdrawalReasons returns the withdrawal-reason picklist.
func GetWithdrawalReasons(c *fiber.Ctx) error {
	reasons, err := store.GetWithdrawalReasons(database.Database.Db)
	if err != nil {
		log.Printf("Failed to fetch withdrawal reasons: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch withdrawal reasons! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal reasons fetched successfully!", reasons)
}
