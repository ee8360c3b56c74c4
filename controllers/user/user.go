package controllers

import (
	"log"

	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"
	userValidator "github.com/tgaisser/ocb/validators/user"

	"github.com/gofiber/fiber/v2"
)

// GetSettings returns the caller's preferences, defaults when never saved.
func GetSettings(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	settings, err := store.GetUserSettings(database.Database.Db, userId)
	if err != nil {
		log.Printf("Failed to fetch settings for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch preferences! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Preferences fetched successfully!", settings)
}

// SaveSettings updates the caller's preferences. Absent fields keep their
// current values.
func SaveSettings(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedSettings").(*userValidator.SettingsRequest)

	db := database.Database.Db
	settings, err := store.GetUserSettings(db, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save preferences! Please try again later.", nil)
	}

	if reqData.ProgressEmailFrequency != "" {
		settings.ProgressEmailFrequency = reqData.ProgressEmailFrequency
	}
	if reqData.EmailStatus != "" {
		settings.EmailStatus = reqData.EmailStatus
	}
	if reqData.PreferAudioLectures != nil {
		settings.PreferAudioLectures = *reqData.PreferAudioLectures
	}
	if reqData.DataSaver != nil {
		settings.DataSaver = *reqData.DataSaver
	}
	if reqData.SubjectPreference != "" {
		settings.SubjectPreference = reqData.SubjectPreference
	}

	if err := store.SaveUserSettings(db, settings); err != nil {
		log.Printf("Failed to save settings for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save preferences! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Preferences saved successfully!", settings)
}

// SaveSubject updates only the subject preference.
func SaveSubject(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedSubject").(*userValidator.SubjectRequest)

	if err := store.SetSubjectPreference(database.Database.Db, userId, *reqData.Subject); err != nil {
		log.Printf("Failed to save subject preference for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save preferences! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Preferences saved successfully!", nil)
}

// SavePreferAudio updates only the audio-lecture preference.
func SavePreferAudio(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedPreferAudio").(*userValidator.PreferAudioRequest)

	if err := store.SetPreferAudio(database.Database.Db, userId, *reqData.PreferAudio); err != nil {
		log.Printf("Failed to save audio preference for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save preferences! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Preferences saved successfully!", nil)
}

// SocialSignin records the attribution codes present on a social sign-in.
func SocialSignin(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	email, _ := c.Locals("email").(string)
	username, _ := c.Locals("username").(string)

	utm := new(models.UtmInfo)
	if err := c.QueryParser(utm); err != nil {
		utm = nil
	}

	if err := store.RecordSignupAnalytics(database.Database.Db, userId, email, username, utm); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record sign-in! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sign-in recorded!", nil)
}
