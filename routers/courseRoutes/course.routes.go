package courseRoutes

import (
	controllers "github.com/tgaisser/ocb/controllers/course"
	quizControllers "github.com/tgaisser/ocb/controllers/quiz"
	"github.com/tgaisser/ocb/middleware"
	validators "github.com/tgaisser/ocb/validators/course"
	quizValidators "github.com/tgaisser/ocb/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all course, progress and quiz routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/courses")

	// Anonymous endpoints
	courseGroup.Get("/health", controllers.Health)
	courseGroup.Put("/:courseId/inquiries", validators.CourseId(), validators.InquireCourse(), controllers.InquireCourse)

	// Enrollment
	courseGroup.Get("/", middleware.JWTMiddleware, controllers.GetUserCourses)
	courseGroup.Get("/withdrawal-reasons", middleware.JWTMiddleware, controllers.GetWithdrawalReasons)
	courseGroup.Get("/progress", middleware.JWTMiddleware, controllers.GetProgress)
	courseGroup.Put("/:courseId", middleware.JWTMiddleware, validators.CourseId(), validators.EnrollCourse(), controllers.EnrollCourse)
	courseGroup.Put("/:courseId/early-access/:token", middleware.JWTMiddleware, validators.CourseId(), controllers.RedeemEarlyAccess)

	// Progress tracking
	courseGroup.Get("/:courseId/progress", middleware.JWTMiddleware, controllers.GetProgress)
	courseGroup.Put("/:courseId/progress", middleware.JWTMiddleware, validators.CourseId(), controllers.MarkCourseOpen)
	courseGroup.Put("/:courseId/progress/lecture/:lectureId", middleware.JWTMiddleware, validators.CourseId(), controllers.MarkLectureOpen)
	courseGroup.Put("/:courseId/progress/:type/:lectureId/videos/:videoId", middleware.JWTMiddleware, validators.CourseId(), validators.VideoProgress(), controllers.VideoProgress)
	courseGroup.Put("/:courseId/progress/:type/:lectureId/videos/:videoId/bulk", middleware.JWTMiddleware, validators.CourseId(), validators.BulkVideoProgress(), controllers.BulkVideoProgress)

	// File download logging
	courseGroup.Post("/:courseId/progress/files/:fileType", middleware.JWTMiddleware, validators.CourseId(), validators.FileDownload(), controllers.FileDownload)
	courseGroup.Post("/:courseId/progress/lecture/:lectureId/files/:fileType", middleware.JWTMiddleware, validators.CourseId(), validators.FileDownload(), controllers.FileDownload)

	// Quizzes
	courseGroup.Get("/:courseId/quizzes", middleware.JWTMiddleware, validators.CourseId(), quizControllers.GetCourseQuizzes)
	courseGroup.Get("/:courseId/lecture/:lectureId/quiz/:quizId", middleware.JWTMiddleware, validators.CourseId(), quizControllers.GetQuizResult)
	courseGroup.Put("/:courseId/lecture/:lectureId/quiz/:quizName", middleware.JWTMiddleware, validators.CourseId(), quizValidators.GradeQuiz(), quizControllers.GradeQuiz)
}
