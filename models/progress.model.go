package models

import (
	"time"
)

// ItemProgress tracks how far a user has gotten through one item. One row per
// (user, item, type); ProgressPercentage is 0-100 and only moves forward unless an
// overwrite is explicitly requested.
type ItemProgress struct {
	ID                 uint      `json:"-" gorm:"primaryKey"`
	UserId             string    `json:"userId" gorm:"uniqueIndex:idx_item_progress_key;size:64;not null"`
	ItemId             string    `json:"itemId" gorm:"uniqueIndex:idx_item_progress_key;size:64;not null"`
	ItemType           string    `json:"itemType" gorm:"uniqueIndex:idx_item_progress_key;size:16;not null"`
	ProgressPercentage int       `json:"progressPercentage"`
	LastValue          int       `json:"lastValue"`
	Completed          bool      `json:"completed"`
	LastActivityDate   time.Time `json:"lastActivityDate"`
}

// UserVideoProgress is the furthest confirmed playback position per (user, video).
// Derived from watch-interval submissions, not a log of every interval.
type UserVideoProgress struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	UserId           string    `json:"userId" gorm:"uniqueIndex:idx_user_video_key;size:64;not null"`
	VideoId          string    `json:"videoId" gorm:"uniqueIndex:idx_user_video_key;size:64;not null"`
	CourseId         string    `json:"courseId" gorm:"size:64"`
	LectureId        string    `json:"lectureId" gorm:"size:64"`
	LectureType      string    `json:"lectureType" gorm:"size:16"`
	Position         int       `json:"position"`
	EventTime        time.Time `json:"eventTime"`
	LastActivityDate time.Time `json:"lastActivityDate"`
}

// UserCourseInfo is the pre-aggregated course-level summary the progress views read.
// Maintained by the store on enrollment and item-progress writes, never recomputed
// by callers.
type UserCourseInfo struct {
	ID               uint       `json:"-" gorm:"primaryKey"`
	UserId           string     `json:"userId" gorm:"uniqueIndex:idx_user_course_info_key;size:64;not null"`
	CourseId         string     `json:"courseId" gorm:"uniqueIndex:idx_user_course_info_key;size:64;not null"`
	EnrollmentDate   time.Time  `json:"enrollmentDate"`
	WithdrawalDate   *time.Time `json:"withdrawalDate"`
	Progress         int        `json:"progress"`
	Completed        bool       `json:"completed"`
	CompleteDate     *time.Time `json:"completeDate"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

// CourseAccess logs each time a user opens a course
type CourseAccess struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserId     string    `json:"userId" gorm:"index;size:64;not null"`
	CourseId   string    `json:"courseId" gorm:"size:64;not null"`
	AccessDate time.Time `json:"accessDate" gorm:"autoCreateTime"`
}

// LectureAccess logs each time a user opens a lecture
type LectureAccess struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserId     string    `json:"userId" gorm:"index;size:64;not null"`
	CourseId   string    `json:"courseId" gorm:"size:64;not null"`
	LectureId  string    `json:"lectureId" gorm:"size:64;not null"`
	Type       string    `json:"type" gorm:"size:16"`
	AccessDate time.Time `json:"accessDate" gorm:"autoCreateTime"`
}

// File download types recorded on UserFileDownload rows
const (
	FileDownloadReading    = "Reading"
	FileDownloadStudyGuide = "Study Guide"
	FileDownloadAudio      = "Audio"
	FileDownloadOther      = "Other"
)

// UserFileDownload logs course-material downloads (readings, study guides, audio)
type UserFileDownload struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserId       string    `json:"userId" gorm:"index;size:64;not null"`
	CourseId     string    `json:"courseId" gorm:"size:64;not null"`
	LectureId    string    `json:"lectureId" gorm:"size:64"`
	DownloadUrl  string    `json:"downloadUrl"`
	DownloadType string    `json:"downloadType" gorm:"size:16"`
	DownloadDate time.Time `json:"downloadDate" gorm:"autoCreateTime"`
}
