package store

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"github.com/tgaisser/ocb/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// quizItemType finds how the quiz is linked into the course (quiz vs final-quiz).
// Unlinked quizzes count as regular.
func quizItemType(db *gorm.DB, courseId, quizId string) string {
	var elem models.CourseElem
	err := db.Where("course_id = ? AND elem_id = ?", courseId, quizId).First(&elem).Error
	if err == nil && elem.ElemType == models.ItemTypeFinalQuiz {
		return models.ItemTypeFinalQuiz
	}
	return models.ItemTypeQuiz
}

// SaveQuizResult appends a grading attempt and feeds the outcome into the progress
// ledger. Attempts are never overwritten; latest and best are derived on read.
func SaveQuizResult(db *gorm.DB, result *models.QuizResult) error {
	if len(result.AnswerGrades) > 0 {
		raw, err := json.Marshal(result.AnswerGrades)
		if err != nil {
			return err
		}
		result.Results = datatypes.JSON(raw)
	}
	if result.CompleteTime.IsZero() {
		result.CompleteTime = time.Now().UTC()
	}

	if err := db.Create(result).Error; err != nil {
		log.Printf("Failed to save quiz result for user %s quiz %s: %v", result.UserId, result.QuizId, err)
		return err
	}

	itemType := quizItemType(db, result.CourseId, result.QuizId)
	pct := int(math.Round(result.Percentage * 100))
	if _, err := MarkQuizProgress(db, result.UserId, result.QuizId, itemType, pct); err != nil {
		return err
	}
	return UpdateCourseSummary(db, result.UserId, result.CourseId)
}

func hydrateQuizResult(db *gorm.DB, row *models.QuizResult) {
	if len(row.Results) > 0 {
		if err := json.Unmarshal(row.Results, &row.AnswerGrades); err != nil {
			log.Printf("Failed to decode stored answers for quiz result %d: %v", row.ID, err)
		}
	}
	var quiz models.Quiz
	if err := db.Where("obj_id = ?", row.QuizId).First(&quiz).Error; err == nil {
		row.QuizName = quiz.Name
	}
}

// GetQuizResult returns the user's latest attempt at one quiz, annotated with the
// best percentage across all attempts. Nil when the quiz was never attempted.
func GetQuizResult(db *gorm.DB, userId, courseId, lectureId, quizId string) (*models.QuizResult, error) {
	var latest models.QuizResult
	err := db.Where("user_id = ? AND course_id = ? AND lecture_id = ? AND quiz_id = ?",
		userId, courseId, lectureId, quizId).
		Order("complete_time desc").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var best float64
	err = db.Model(&models.QuizResult{}).
		Where("user_id = ? AND course_id = ? AND lecture_id = ? AND quiz_id = ?",
			userId, courseId, lectureId, quizId).
		Select("max(percentage)").
		Scan(&best).Error
	if err != nil {
		return nil, err
	}
	latest.BestPercentageCorrect = best

	hydrateQuizResult(db, &latest)
	return &latest, nil
}

// GetQuizResults returns the user's latest attempt per (lecture, quiz) in a course,
// each annotated with the best percentage for that quiz.
func GetQuizResults(db *gorm.DB, userId, courseId string) ([]models.QuizResult, error) {
	var rows []models.QuizResult
	err := db.Where("user_id = ? AND course_id = ?", userId, courseId).
		Order("complete_time desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	type key struct{ lectureId, quizId string }
	seen := map[key]int{}
	results := make([]models.QuizResult, 0, len(rows))
	for _, row := range rows {
		k := key{row.LectureId, row.QuizId}
		if idx, ok := seen[k]; ok {
			if row.Percentage > results[idx].BestPercentageCorrect {
				results[idx].BestPercentageCorrect = row.Percentage
			}
			continue
		}
		row.BestPercentageCorrect = row.Percentage
		hydrateQuizResult(db, &row)
		seen[k] = len(results)
		results = append(results, row)
	}
	return results, nil
}
