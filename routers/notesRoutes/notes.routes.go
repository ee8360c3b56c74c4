package notesRoutes

import (
	controllers "github.com/tgaisser/ocb/controllers/notes"
	"github.com/tgaisser/ocb/middleware"
	validators "github.com/tgaisser/ocb/validators/notes"

	"github.com/gofiber/fiber/v2"
)

// SetupNotesRoutes sets up all note routes. Everything here requires auth.
func SetupNotesRoutes(app *fiber.App) {
	notesGroup := app.Group("/notes", middleware.JWTMiddleware)

	notesGroup.Get("/", controllers.GetNotes)
	notesGroup.Get("/headers", controllers.GetNoteHeaders)
	notesGroup.Get("/:courseId", controllers.GetNotes)
	notesGroup.Get("/:courseId/headers", controllers.GetNoteHeaders)
	notesGroup.Get("/:courseId/lectures/:lectureId", controllers.GetNote)
	notesGroup.Put("/:courseId/lectures/:lectureId", validators.SaveNote(), controllers.SaveNote)
}
