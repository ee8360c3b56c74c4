package models

import (
	"time"
)

// Item types stored on CourseElem and ItemProgress rows
const (
	ItemTypeCourse    = "course"
	ItemTypeLecture   = "lecture"
	ItemTypeQuiz      = "quiz"
	ItemTypeFinalQuiz = "final-quiz"
	ItemTypeQA        = "qa"
)

// Course is the catalog record for a course. ObjId is the content-API object id
// used everywhere else as the course id.
type Course struct {
	ID               uint       `json:"-" gorm:"primaryKey"`
	ObjId            string     `json:"id" gorm:"uniqueIndex;size:64;not null"`
	Name             string     `json:"name"`
	HubspotKey       string     `json:"-"`
	InstructionHours float64    `json:"instructionHours"`
	DeactivateDate   *time.Time `json:"-"`
}

// Lecture belongs to a course and may reference a media item (its video)
type Lecture struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	ObjId          string     `json:"id" gorm:"uniqueIndex;size:64;not null"`
	CourseId       string     `json:"courseId" gorm:"index;size:64"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	MediaId        string     `json:"mediaId" gorm:"size:64"`
	DeactivateDate *time.Time `json:"-"`
}

// Quiz is the catalog record for a quiz (regular or final)
type Quiz struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	ObjId          string     `json:"id" gorm:"uniqueIndex;size:64;not null"`
	Name           string     `json:"name"`
	DeactivateDate *time.Time `json:"-"`
}

// CourseElem links an item (lecture/quiz/final-quiz) into a course
type CourseElem struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	CourseId       string     `json:"courseId" gorm:"index;size:64;not null"`
	ElemType       string     `json:"elemType" gorm:"size:16;not null"`
	ElemId         string     `json:"elemId" gorm:"index;size:64;not null"`
	OrderIndex     int        `json:"orderIndex"`
	DeactivateDate *time.Time `json:"-"`
}

// MediaItem holds video metadata; Duration (seconds) is the basis for watch percentages
type MediaItem struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// WithdrawalReason is a row in the withdrawal-reason picklist
type WithdrawalReason struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Reason         string     `json:"text"`
	DeactivateDate *time.Time `json:"-"`
}
