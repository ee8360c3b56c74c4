package userRoutes

import (
	controllers "github.com/tgaisser/ocb/controllers/user"
	"github.com/tgaisser/ocb/middleware"
	validators "github.com/tgaisser/ocb/validators/user"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes sets up the preference and sign-in routes
func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/users/me", middleware.JWTMiddleware)

	userGroup.Get("/preferences", controllers.GetSettings)
	userGroup.Put("/preferences", validators.Settings(), controllers.SaveSettings)
	userGroup.Put("/preferences/subject", validators.Subject(), controllers.SaveSubject)
	userGroup.Put("/preferences/preferAudio", validators.PreferAudio(), controllers.SavePreferAudio)
	userGroup.Put("/social-signin", controllers.SocialSignin)
}
