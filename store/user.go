package store

import (
	"errors"
	"log"
	"time"

	"github.com/tgaisser/ocb/models"

	"gorm.io/gorm"
)

// Defaults applied when a user has never saved settings.
const (
	DefaultProgressEmailFrequency = "weekly"
	DefaultEmailStatus            = "subscribed"
)

// GetUserSettings returns the user's settings, falling back to defaults when the
// user has never saved any.
func GetUserSettings(db *gorm.DB, userId string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := db.Where("user_id = ?", userId).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserSettings{
			UserId:                 userId,
			ProgressEmailFrequency: DefaultProgressEmailFrequency,
			EmailStatus:            DefaultEmailStatus,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveUserSettings upserts the user's settings row.
func SaveUserSettings(db *gorm.DB, settings *models.UserSettings) error {
	settings.LastUpdateDate = time.Now().UTC()

	var existing models.UserSettings
	err := db.Where("user_id = ?", settings.UserId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(settings).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&existing).Updates(map[string]interface{}{
		"progress_email_frequency": settings.ProgressEmailFrequency,
		"email_status":             settings.EmailStatus,
		"prefer_audio_lectures":    settings.PreferAudioLectures,
		"data_saver":               settings.DataSaver,
		"subject_preference":       settings.SubjectPreference,
		"last_update_date":         settings.LastUpdateDate,
	}).Error
}

// SetSubjectPreference updates just the subject preference, creating the settings
// row if needed.
func SetSubjectPreference(db *gorm.DB, userId, subject string) error {
	settings, err := GetUserSettings(db, userId)
	if err != nil {
		return err
	}
	settings.SubjectPreference = subject
	return SaveUserSettings(db, settings)
}

// SetPreferAudio updates just the audio-lecture preference.
func SetPreferAudio(db *gorm.DB, userId string, preferAudio bool) error {
	settings, err := GetUserSettings(db, userId)
	if err != nil {
		return err
	}
	settings.PreferAudioLectures = preferAudio
	return SaveUserSettings(db, settings)
}

// RecordSignupAnalytics stores the attribution codes present on a social sign-in.
// Best effort: duplicates for the same user are fine, the latest row wins downstream.
func RecordSignupAnalytics(db *gorm.DB, userId, email, username string, utm *models.UtmInfo) error {
	row := models.SignupAnalytics{
		UserId:    userId,
		Email:     email,
		Username:  username,
		Analytics: utmJson(utm),
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("Failed to record signup analytics for user %s: %v", userId, err)
		return err
	}
	return nil
}
