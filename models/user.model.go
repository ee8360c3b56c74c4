package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserSettings stores per-user preferences. Users don't get a row until they first
// save, so readers fall back to defaults.
type UserSettings struct {
	UserId                 string    `json:"userId" gorm:"primaryKey;size:64"`
	ProgressEmailFrequency string    `json:"progressReportFrequency"`
	EmailStatus            string    `json:"emailStatus"`
	PreferAudioLectures    bool      `json:"preferAudioLectures"`
	DataSaver              bool      `json:"dataSaver"`
	SubjectPreference      string    `json:"subjectPreference"`
	LastUpdateDate         time.Time `json:"lastUpdate"`
}

// SignupAnalytics records the attribution codes present when an account signed in
// through a social provider
type SignupAnalytics struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserId     string         `json:"userId" gorm:"index;size:64;not null"`
	Email      string         `json:"email" gorm:"size:255"`
	Username   string         `json:"username" gorm:"size:255"`
	Analytics  datatypes.JSON `json:"-"`
	CreateDate time.Time      `json:"createDate" gorm:"autoCreateTime"`
}
