package store

import (
	"testing"

	"github.com/tgaisser/ocb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSettingsDefaults(t *testing.T) {
	db := setupTestDb(t)

	settings, err := GetUserSettings(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultProgressEmailFrequency, settings.ProgressEmailFrequency)
	assert.Equal(t, DefaultEmailStatus, settings.EmailStatus)
	assert.False(t, settings.PreferAudioLectures)

	// Defaults are not persisted until the user saves
	var count int64
	require.NoError(t, db.Model(&models.UserSettings{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUserSettingsSaveAndPartialUpdates(t *testing.T) {
	db := setupTestDb(t)

	settings, err := GetUserSettings(db, "user-1")
	require.NoError(t, err)
	settings.ProgressEmailFrequency = "monthly"
	require.NoError(t, SaveUserSettings(db, settings))

	require.NoError(t, SetSubjectPreference(db, "user-1", "history"))
	require.NoError(t, SetPreferAudio(db, "user-1", true))

	got, err := GetUserSettings(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "monthly", got.ProgressEmailFrequency)
	assert.Equal(t, "history", got.SubjectPreference)
	assert.True(t, got.PreferAudioLectures)

	var count int64
	require.NoError(t, db.Model(&models.UserSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordSignupAnalytics(t *testing.T) {
	db := setupTestDb(t)

	utm := &models.UtmInfo{Source: "google", GoogleClickID: "abc123"}
	require.NoError(t, RecordSignupAnalytics(db, "user-1", "u@example.com", "u", utm))

	var row models.SignupAnalytics
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "user-1", row.UserId)
	assert.Contains(t, string(row.Analytics), "abc123")
}
