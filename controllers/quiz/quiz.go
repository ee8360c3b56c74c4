package controllers

import (
	"errors"
	"log"
	"math"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"
	"github.com/tgaisser/ocb/utils"
	quizValidator "github.com/tgaisser/ocb/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

var (
	content *utils.ContentClient
	hubspot *utils.HubspotClient
)

func contentClient() *utils.ContentClient {
	if content == nil {
		content = utils.NewContentClient(config.AppConfig.ContentApiRoot, config.AppConfig.ContentApiKey)
	}
	return content
}

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

// Grade scores a submission against the quiz definition. Answers for questions
// the definition does not contain are skipped; correctness is exact string
// equality. The percentage is floor(score/graded*100)/100 over the answers that
// matched a question, and 0 when none did.
func Grade(def *utils.QuizDefinition, answers []quizValidator.QuizAnswer) (int, float64, []models.QuizAnswerGrade) {
	correctById := make(map[string]string, len(def.Questions))
	for _, q := range def.Questions {
		correctById[q.Id] = q.CorrectAnswer
	}

	score := 0
	grades := make([]models.QuizAnswerGrade, 0, len(answers))
	for _, answer := range answers {
		expected, known := correctById[answer.Id]
		if !known {
			continue
		}
		correct := answer.Answer == expected
		if correct {
			score++
		}
		grades = append(grades, models.QuizAnswerGrade{
			Id:             answer.Id,
			Correct:        correct,
			SelectedOption: answer.Answer,
		})
	}

	total := len(grades)
	if total == 0 {
		return 0, 0, grades
	}
	percentage := math.Floor(float64(score)/float64(total)*100) / 100
	return score, percentage, grades
}

// GradeQuiz fetches the quiz definition, grades the submission, persists the
// attempt and returns the latest result with the best score.
func GradeQuiz(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureId := c.Params("lectureId")
	quizName := c.Params("quizName")
	reqData := c.Locals("validatedGrade").(*quizValidator.GradeRequest)

	def, err := contentClient().GetQuizDefinition(quizName)
	if errors.Is(err, utils.ErrItemNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	if err != nil {
		log.Printf("Failed to fetch quiz definition %s: %v", quizName, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to grade quiz! Please try again later.", nil)
	}

	score, percentage, grades := Grade(def, reqData.Answers)

	db := database.Database.Db
	wasComplete, _ := store.IsCourseComplete(db, userId, courseId)

	result := &models.QuizResult{
		UserId:       userId,
		CourseId:     courseId,
		LectureId:    lectureId,
		QuizId:       def.Id,
		NumQuestions: len(grades),
		Score:        score,
		Percentage:   percentage,
		StartTime:    reqData.StartTime,
		AnswerGrades: grades,
	}
	if err := store.SaveQuizResult(db, result); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to save quiz result! Please try again later.", nil)
	}

	// If this attempt just completed the course, sync the CRM after the response
	if email, _ := c.Locals("email").(string); email != "" && !wasComplete {
		if nowComplete, _ := store.IsCourseComplete(db, userId, courseId); nowComplete {
			if key, err := store.GetCourseHubspotKey(db, courseId); err == nil && key != "" {
				go crmClient().SyncCompletion(email, key)
			}
		}
	}

	latest, err := store.GetQuizResult(db, userId, courseId, lectureId, def.Id)
	if err != nil || latest == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz graded!", result)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz graded!", latest)
}

// GetQuizResult returns the caller's latest attempt at one quiz.
func GetQuizResult(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureId := c.Params("lectureId")
	quizId := c.Params("quizId")

	result, err := store.GetQuizResult(database.Database.Db, userId, courseId, lectureId, quizId)
	if err != nil {
		log.Printf("Failed to fetch quiz result for user %s quiz %s: %v", userId, quizId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz result! Please try again later.", nil)
	}
	if result == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No quiz result found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz result fetched successfully!", result)
}

// GetCourseQuizzes returns the caller's latest attempt per quiz in a course.
func GetCourseQuizzes(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)

	results, err := store.GetQuizResults(database.Database.Db, userId, courseId)
	if err != nil {
		log.Printf("Failed to fetch quiz results for user %s course %s: %v", userId, courseId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz results! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz results fetched successfully!", results)
}
