package database

import (
	"fmt"
	"log"
	"os"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	cfg := config.AppConfig

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Course{},
		&models.Lecture{},
		&models.Quiz{},
		&models.CourseElem{},
		&models.MediaItem{},
		&models.WithdrawalReason{},
		&models.CourseEnrollment{},
		&models.SubEnrollment{},
		&models.CourseInquiry{},
		&models.ItemProgress{},
		&models.UserVideoProgress{},
		&models.UserCourseInfo{},
		&models.CourseAccess{},
		&models.LectureAccess{},
		&models.UserFileDownload{},
		&models.QuizResult{},
		&models.Note{},
		&models.UserSettings{},
		&models.SignupAnalytics{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
