package models

import (
	"time"
)

// Note is a user's private note for one lecture. NoteText only ever holds the
// encrypted form (base64 of IV || ciphertext); the decrypted text travels on the
// transient Text field.
type Note struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserId     string     `json:"userId" gorm:"uniqueIndex:idx_note_key;size:64;not null"`
	CourseId   string     `json:"courseId" gorm:"uniqueIndex:idx_note_key;size:64;not null"`
	LectureId  string     `json:"lectureId" gorm:"uniqueIndex:idx_note_key;size:64;not null"`
	NoteText   string     `json:"-"`
	CreateDate time.Time  `json:"created"`
	UpdateDate *time.Time `json:"updated"`

	Text        string `json:"text,omitempty" gorm:"-"`
	LectureName string `json:"lectureName,omitempty" gorm:"-"`
}
