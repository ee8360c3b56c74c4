package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tgaisser/ocb/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, courseId string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Course{
		ObjId: courseId,
		Name:  "Test Course",
	}).Error)
}
