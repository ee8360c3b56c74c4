package controllers

import (
	"log"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/store"
	notesValidator "github.com/tgaisser/ocb/validators/notes"

	"github.com/gofiber/fiber/v2"
)

// GetNotes returns the caller's decrypted notes, optionally scoped to a course.
func GetNotes(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Params("courseId")

	notes, err := store.GetNotes(database.Database.Db, config.AppConfig.NotesKey, userId, courseId)
	if err != nil {
		log.Printf("Failed to fetch notes for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notes! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notes fetched successfully!", notes)
}

// GetNoteHeaders lists the caller's notes without their text.
func GetNoteHeaders(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Params("courseId")

	headers, err := store.GetNoteHeaders(database.Database.Db, userId, courseId)
	if err != nil {
		log.Printf("Failed to fetch note headers for user %s: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notes! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Note headers fetched successfully!", headers)
}

// GetNote returns the caller's note for one lecture.
func GetNote(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Params("courseId")
	lectureId := c.Params("lectureId")

	note, err := store.GetNote(database.Database.Db, config.AppConfig.NotesKey, userId, courseId, lectureId)
	if err != nil {
		log.Printf("Failed to fetch note for user %s lecture %s: %v", userId, lectureId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch note! Please try again later.", nil)
	}
	if note == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No note found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Note fetched successfully!", note)
}

// SaveNote encrypts and stores the caller's note for a lecture.
func SaveNote(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseId := c.Params("courseId")
	lectureId := c.Params("lectureId")
	reqData := c.Locals("validatedNote").(*notesValidator.NoteRequest)

	note, err := store.SaveNote(database.Database.Db, config.AppConfig.NotesKey, userId, courseId, lectureId, *reqData.Text)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save note! Please try again later.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Note saved successfully!", note)
}
