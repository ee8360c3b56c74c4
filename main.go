package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/database"
	"github.com/tgaisser/ocb/mailer"
	"github.com/tgaisser/ocb/middleware"
	courseRoutes "github.com/tgaisser/ocb/routers/courseRoutes"
	multimediaRoutes "github.com/tgaisser/ocb/routers/multimediaRoutes"
	notesRoutes "github.com/tgaisser/ocb/routers/notesRoutes"
	userRoutes "github.com/tgaisser/ocb/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Load issuer signing keys and keep them fresh
	middleware.StartKeyRefresh()
	defer middleware.StopKeyRefresh()

	progressMailer := mailer.NewProgressMailer(
		database.Database.Db,
		config.AppConfig.SendgridApiKey,
		config.AppConfig.EmailSender,
	)
	progressMailer.Start()
	defer progressMailer.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	app.Use(middleware.RequestID)

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	courseRoutes.SetupCourseRoutes(app)
	notesRoutes.SetupNotesRoutes(app)
	userRoutes.SetupUserRoutes(app)
	multimediaRoutes.SetupMultimediaRoutes(app)

	// Shut down cleanly on SIGINT/SIGTERM so the schedulers stop too
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
