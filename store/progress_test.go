package store

import (
	"testing"
	"time"

	"github.com/tgaisser/ocb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const videoId = "11111111-2222-3333-4444-555555555555"

func seedLectureCourse(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedCourse(t, db, "course-1")
	require.NoError(t, db.Create(&models.Lecture{
		ObjId: "lecture-1", CourseId: "course-1", Name: "Lecture One", MediaId: videoId,
	}).Error)
	require.NoError(t, db.Create(&models.MediaItem{
		ID: videoId, Name: "Lecture One Video", Duration: 600,
	}).Error)
	require.NoError(t, db.Create(&models.CourseElem{
		CourseId: "course-1", ElemType: models.ItemTypeLecture, ElemId: "lecture-1", OrderIndex: 0,
	}).Error)
}

func TestItemProgressIsMonotonic(t *testing.T) {
	db := setupTestDb(t)

	p, err := UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 40, false)
	require.NoError(t, err)
	assert.Equal(t, 40, p)

	// Lower value without overwrite is ignored
	p, err = UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 25, false)
	require.NoError(t, err)
	assert.Equal(t, 40, p)

	// Same value is a no-op and keeps the activity date
	var before models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "item-1").First(&before).Error)

	p, err = UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 40, false)
	require.NoError(t, err)
	assert.Equal(t, 40, p)

	var after models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "item-1").First(&after).Error)
	assert.Equal(t, before.LastActivityDate, after.LastActivityDate)

	// Higher value advances
	p, err = UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 80, false)
	require.NoError(t, err)
	assert.Equal(t, 80, p)
}

func TestItemProgressOverwriteStopsAtComplete(t *testing.T) {
	db := setupTestDb(t)

	_, err := UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 60, false)
	require.NoError(t, err)

	// Overwrite can lower an incomplete item
	p, err := UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 30, true)
	require.NoError(t, err)
	assert.Equal(t, 30, p)

	_, err = UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 100, false)
	require.NoError(t, err)

	// But never a completed one
	p, err = UpsertItemProgress(db, "user-1", "item-1", models.ItemTypeLecture, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 100, p)
}

func TestVideoProgressNeverRegresses(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	now := time.Now().UTC()

	watched, err := RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", 300, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, watched, 0.001)

	// A rewind report keeps the furthest position
	watched, err = RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", 120, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, watched, 0.001)

	var row models.UserVideoProgress
	require.NoError(t, db.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&row).Error)
	assert.Equal(t, 300, row.Position)

	// Lecture progress follows the watched fraction
	var lp models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "lecture-1").First(&lp).Error)
	assert.Equal(t, 50, lp.ProgressPercentage)
}

func TestOutOfOrderReportsKeepMax(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	now := time.Now().UTC()

	// Reports landing out of order must converge on the furthest position
	for _, pos := range []int{10, 50, 30, 45} {
		_, err := RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", pos, now)
		require.NoError(t, err)
	}

	var row models.UserVideoProgress
	require.NoError(t, db.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&row).Error)
	assert.Equal(t, 50, row.Position)

	afterMax := row.LastActivityDate

	// A late lower report leaves the row byte-identical
	_, err = RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", 20, now)
	require.NoError(t, err)
	require.NoError(t, db.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&row).Error)
	assert.Equal(t, 50, row.Position)
	assert.Equal(t, afterMax, row.LastActivityDate)

	// Same guarantee on the item ledger
	for _, pct := range []int{10, 60, 40} {
		_, err := UpsertItemProgress(db, "user-1", "item-9", models.ItemTypeLecture, pct, false)
		require.NoError(t, err)
	}
	var ip models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "item-9").First(&ip).Error)
	assert.Equal(t, 60, ip.ProgressPercentage)
}

func TestVideoProgressRejectsBadId(t *testing.T) {
	db := setupTestDb(t)

	watched, err := RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", "not-a-video", "lecture-1", 10, time.Now())
	assert.ErrorIs(t, err, ErrInvalidVideoId)
	assert.Equal(t, -1.0, watched)

	// Upper-case hex is accepted
	assert.True(t, videoIdPattern.MatchString("ABCDEF12-3456-7890-ABCD-EF1234567890"))
	assert.False(t, videoIdPattern.MatchString("abcdef12-3456-7890-abcd-ef123456789"))
}

func TestBulkEqualsRepeatedSingles(t *testing.T) {
	intervals := []VideoInterval{{0, 90}, {60, 240}, {200, 180}}

	db1 := setupTestDb(t)
	seedLectureCourse(t, db1)
	_, err := MarkCourseEnrollment(db1, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, iv := range intervals {
		_, err := RecordVideoProgress(db1, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", iv.End, now)
		require.NoError(t, err)
	}

	t.Run("bulk", func(t *testing.T) {
		db2 := setupTestDb(t)
		seedLectureCourse(t, db2)
		_, err := MarkCourseEnrollment(db2, "user-1", "course-1", true, nil, false, nil)
		require.NoError(t, err)

		watched, err := RecordBulkVideoProgress(db2, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", intervals, now)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, watched, 0.001)

		var single, bulk models.UserVideoProgress
		require.NoError(t, db1.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&single).Error)
		require.NoError(t, db2.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&bulk).Error)
		assert.Equal(t, single.Position, bulk.Position)
	})
}

func TestQuizProgressRules(t *testing.T) {
	db := setupTestDb(t)

	// Any regular-quiz attempt records full progress
	p, err := MarkQuizProgress(db, "user-1", "quiz-1", models.ItemTypeQuiz, 12)
	require.NoError(t, err)
	assert.Equal(t, 100, p)

	// Final quiz keeps the best score
	p, err = MarkQuizProgress(db, "user-1", "final-1", models.ItemTypeFinalQuiz, 62)
	require.NoError(t, err)
	assert.Equal(t, 62, p)

	var before models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "final-1").First(&before).Error)

	p, err = MarkQuizProgress(db, "user-1", "final-1", models.ItemTypeFinalQuiz, 40)
	require.NoError(t, err)
	assert.Equal(t, 62, p)

	var after models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "final-1").First(&after).Error)
	assert.Equal(t, before.LastActivityDate, after.LastActivityDate)

	p, err = MarkQuizProgress(db, "user-1", "final-1", models.ItemTypeFinalQuiz, 85)
	require.NoError(t, err)
	assert.Equal(t, 85, p)
}

func TestFinalQuizCompletionThreshold(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")
	require.NoError(t, db.Create(&models.Quiz{ObjId: "final-1", Name: "Final Exam"}).Error)
	require.NoError(t, db.Create(&models.CourseElem{
		CourseId: "course-1", ElemType: models.ItemTypeFinalQuiz, ElemId: "final-1", OrderIndex: 0,
	}).Error)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	_, err = MarkQuizProgress(db, "user-1", "final-1", models.ItemTypeFinalQuiz, 79)
	require.NoError(t, err)
	require.NoError(t, UpdateCourseSummary(db, "user-1", "course-1"))

	complete, err := IsCourseComplete(db, "user-1", "course-1")
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = MarkQuizProgress(db, "user-1", "final-1", models.ItemTypeFinalQuiz, 80)
	require.NoError(t, err)
	require.NoError(t, UpdateCourseSummary(db, "user-1", "course-1"))

	complete, err = IsCourseComplete(db, "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestMarkCourseOpenFloorsProgress(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	require.NoError(t, MarkCourseOpen(db, "user-1", "course-1"))

	var cp models.ItemProgress
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "course-1").First(&cp).Error)
	assert.Equal(t, 1, cp.ProgressPercentage)

	// Opening again never lowers progress already made
	_, err = UpsertItemProgress(db, "user-1", "course-1", models.ItemTypeCourse, 45, false)
	require.NoError(t, err)
	require.NoError(t, MarkCourseOpen(db, "user-1", "course-1"))
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", "user-1", "course-1").First(&cp).Error)
	assert.Equal(t, 45, cp.ProgressPercentage)

	var accesses int64
	require.NoError(t, db.Model(&models.CourseAccess{}).Count(&accesses).Error)
	assert.EqualValues(t, 2, accesses)
}

func TestProgressViewDedupesDuplicateItems(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	// Legacy data can carry the same item under two types; the first row wins
	require.NoError(t, db.Create(&models.ItemProgress{
		UserId: "user-1", ItemId: "lecture-1", ItemType: models.ItemTypeLecture,
		ProgressPercentage: 70, LastActivityDate: time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Create(&models.ItemProgress{
		UserId: "user-1", ItemId: "lecture-1", ItemType: models.ItemTypeQA,
		ProgressPercentage: 20, LastActivityDate: time.Now().UTC(),
	}).Error)

	views, err := GetCoursesProgress(db, "user-1", "course-1", false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Children, 1)
	assert.Equal(t, 70, views[0].Children[0].ProgressPercentage)
}

func TestProgressViewIncludesVideoDetail(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	_, err = RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", 600, time.Now().UTC())
	require.NoError(t, err)

	views, err := GetCoursesProgress(db, "user-1", "course-1", true)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Videos, 1)
	assert.Equal(t, 600, views[0].Videos[0].Position)

	// Full watch completes the single-lecture course
	assert.Equal(t, 100, views[0].Progress)
	assert.True(t, views[0].Completed)
}

func TestProgressViewExcludesWithdrawnCourses(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")
	seedCourse(t, db, "course-2")

	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)
	_, err = MarkCourseEnrollment(db, "user-1", "course-2", true, nil, false, nil)
	require.NoError(t, err)
	_, err = MarkCourseEnrollment(db, "user-1", "course-1", false, nil, false, nil)
	require.NoError(t, err)

	views, err := GetCoursesProgress(db, "user-1", "", false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "course-2", views[0].CourseId)

	// Asking for the withdrawn course directly reports no enrollment
	_, err = GetCoursesProgress(db, "user-1", "course-1", false)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestProgressViewExcludesDeactivatedCourses(t *testing.T) {
	db := setupTestDb(t)
	gone := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, db.Create(&models.Course{
		ObjId: "course-1", Name: "Retired Course", DeactivateDate: &gone,
	}).Error)

	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	views, err := GetCoursesProgress(db, "user-1", "", false)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = GetCoursesProgress(db, "user-1", "course-1", false)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestBulkEmptyBatchWritesNothing(t *testing.T) {
	db := setupTestDb(t)
	seedLectureCourse(t, db)
	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	now := time.Now().UTC()

	// No intervals, no row
	watched, err := RecordBulkVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", nil, now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, watched)

	var count int64
	require.NoError(t, db.Model(&models.UserVideoProgress{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// With an existing row, an empty batch reports the stored position untouched
	_, err = RecordVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", 300, now)
	require.NoError(t, err)

	watched, err = RecordBulkVideoProgress(db, models.ItemTypeLecture, "user-1", "course-1", videoId, "lecture-1", []VideoInterval{}, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, watched, 0.001)

	var row models.UserVideoProgress
	require.NoError(t, db.Where("user_id = ? AND video_id = ?", "user-1", videoId).First(&row).Error)
	assert.Equal(t, 300, row.Position)
}

func TestMarkFileDownloadNormalizesType(t *testing.T) {
	db := setupTestDb(t)

	require.NoError(t, MarkFileDownload(db, "user-1", "course-1", "lecture-1", "https://cdn.example.com/x.pdf", "Study Guide"))
	require.NoError(t, MarkFileDownload(db, "user-1", "course-1", "", "https://cdn.example.com/y.zip", "weird"))

	var rows []models.UserFileDownload
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, models.FileDownloadStudyGuide, rows[0].DownloadType)
	assert.Equal(t, models.FileDownloadOther, rows[1].DownloadType)
}
