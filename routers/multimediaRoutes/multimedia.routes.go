package multimediaRoutes

import (
	controllers "github.com/tgaisser/ocb/controllers/multimedia"
	"github.com/tgaisser/ocb/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupMultimediaRoutes sets up the video metadata routes
func SetupMultimediaRoutes(app *fiber.App) {
	mmGroup := app.Group("/multimedia", middleware.JWTMiddleware)

	mmGroup.Get("/vimeo/:vimeoId", controllers.GetVideoResolutions)
	mmGroup.Post("/vimeo/alt-resolutions", controllers.GetAltResolutions)
}
