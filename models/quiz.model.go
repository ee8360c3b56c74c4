package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is one grading attempt. Append-only: every attempt inserts a new row;
// "latest" and "best" are derived when reading, never stored.
type QuizResult struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserId       string         `json:"userId" gorm:"index;size:64;not null"`
	CourseId     string         `json:"courseId" gorm:"size:64;not null"`
	LectureId    string         `json:"lectureId" gorm:"size:64"`
	QuizId       string         `json:"quizId" gorm:"index;size:64;not null"`
	NumQuestions int            `json:"numQuestions"`
	Score        int            `json:"score"`
	Percentage   float64        `json:"percentageCorrect"`
	StartTime    *time.Time     `json:"startTime"`
	CompleteTime time.Time      `json:"completeTime"`
	Results      datatypes.JSON `json:"-"`

	// Derived on read, not columns
	QuizName              string            `json:"quizName,omitempty" gorm:"-"`
	BestPercentageCorrect float64           `json:"bestPercentageCorrect" gorm:"-"`
	AnswerGrades          []QuizAnswerGrade `json:"results" gorm:"-"`
}

// QuizAnswerGrade is the per-question outcome serialized onto QuizResult.Results
type QuizAnswerGrade struct {
	Id             string `json:"id"`
	Correct        bool   `json:"correct"`
	SelectedOption string `json:"selectedOption"`
}
