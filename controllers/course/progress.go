package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"
	courseValidator "github.com/tgaisser/ocb/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetProgress returns progress reports for all the caller's courses, or one
// course when the route carries :courseId. ?videos=true adds per-video detail.
func GetProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Params("courseId")
	includeVideos := c.QueryBool("videos", false)

	views, err := store.GetCoursesProgress(database.Database.Db, userId, courseId, includeVideos)
	if errors.Is(err, store.ErrNotEnrolled) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No enrollment found for this course!", nil)
	}
	if err != nil {
		log.Printf("Failed to build progress for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress! Please try again later.", nil)
	}

	if courseId != "" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", views[0])
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", views)
}

// MarkCourseOpen logs a course access.
func MarkCourseOpen(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)

	if err := store.MarkCourseOpen(database.Database.Db, userId, courseId); err != nil {
		log.Printf("Failed to mark course %s open for user %s: %v", courseId, userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course access recorded!", nil)
}

// MarkLectureOpen logs a lecture access.
func MarkLectureOpen(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureId := c.Params("lectureId")
	lectureType := c.Query("type", models.ItemTypeLecture)

	if err := store.MarkLectureOpen(database.Database.Db, userId, courseId, lectureId, lectureType); err != nil {
		log.Printf("Failed to mark lecture %s open for user %s: %v", lectureId, userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture access recorded!", nil)
}

// VideoProgress folds a batch of position events into the running-max position
// for the video and returns the watched fraction.
func VideoProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureType := c.Params("type")
	lectureId := c.Params("lectureId")
	videoId := c.Params("videoId")
	events := c.Locals("validatedVideoEvents").([]courseValidator.VideoEvent)

	maxPosition := 0
	var eventMillis int64
	for _, event := range events {
		if *event.Position > maxPosition {
			maxPosition = *event.Position
			eventMillis = event.EventTime
		}
	}
	eventTime := time.UnixMilli(eventMillis).UTC()
	if eventMillis == 0 {
		eventTime = time.Now().UTC()
	}

	watched, err := store.RecordVideoProgress(database.Database.Db, lectureType, userId, courseId, videoId, lectureId, maxPosition, eventTime)
	if errors.Is(err, store.ErrInvalidVideoId) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid video ID!", watched)
	}
	if err != nil {
		log.Printf("Failed to record video progress for user %s video %s: %v", userId, videoId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video progress recorded!", watched)
}

// BulkVideoProgress folds a whole session's watched intervals in one call.
func BulkVideoProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureType := c.Params("type")
	lectureId := c.Params("lectureId")
	videoId := c.Params("videoId")
	reqData := c.Locals("validatedBulkVideo").(*courseValidator.BulkVideoRequest)

	watched, err := store.RecordBulkVideoProgress(database.Database.Db, lectureType, userId, courseId, videoId, lectureId, reqData.Intervals, time.Now().UTC())
	if errors.Is(err, store.ErrInvalidVideoId) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid video ID!", watched)
	}
	if err != nil {
		log.Printf("Failed to record bulk video progress for user %s video %s: %v", userId, videoId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video progress recorded!", watched)
}

// FileDownload logs a course-material download. The lecture id is optional.
func FileDownload(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Locals("courseId").(string)
	lectureId := c.Params("lectureId")
	fileType := c.Params("fileType")
	reqData := c.Locals("validatedFileDownload").(*courseValidator.FileDownloadRequest)

	if err := store.MarkFileDownload(database.Database.Db, userId, courseId, lectureId, reqData.Url, fileType); err != nil {
		log.Printf("Failed to record file download for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record download! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Download recorded!", nil)
}
