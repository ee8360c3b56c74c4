package store

import (
	"testing"

	"github.com/tgaisser/ocb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollIsIdempotent(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	first, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.EnrollmentDate.Unix(), second.EnrollmentDate.Unix())

	var count int64
	require.NoError(t, db.Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", "user-1", "course-1").
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWithdrawPreservesHistory(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	reason := 3
	withdrawn, err := MarkCourseEnrollment(db, "user-1", "course-1", false, &reason, false, nil)
	require.NoError(t, err)
	require.NotNil(t, withdrawn.WithdrawalDate)
	require.NotNil(t, withdrawn.WithdrawalReason)
	assert.Equal(t, 3, *withdrawn.WithdrawalReason)

	_, err = MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	// Enroll, withdraw, re-enroll leaves three rows with exactly one active
	var rows []models.CourseEnrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", "user-1", "course-1").
		Find(&rows).Error)
	assert.Len(t, rows, 3)

	active := 0
	for _, row := range rows {
		if row.WithdrawalDate == nil {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestWithdrawWithoutEnrollmentFails(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	_, err := MarkCourseEnrollment(db, "user-1", "course-1", false, nil, false, nil)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEnrollListWithdrawScenario(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")
	seedCourse(t, db, "course-2")

	_, err := MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)
	_, err = MarkCourseEnrollment(db, "user-1", "course-2", true, nil, true, nil)
	require.NoError(t, err)

	courses, err := GetUserCourses(db, "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 2)

	_, err = MarkCourseEnrollment(db, "user-1", "course-1", false, nil, false, nil)
	require.NoError(t, err)

	courses, err = GetUserCourses(db, "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "course-2", courses[0].CourseId)
	assert.True(t, courses[0].IsEarlyAccess)
}

func TestStudyGroupMembershipFollowsEnrollment(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	_, err := MarkSubEnrollment(db, "user-1", "course-1", "group-1", true, nil, nil)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	sub, err := MarkSubEnrollment(db, "user-1", "course-1", "group-1", true, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sub.EndDate)

	// Joining again returns the open membership
	again, err := MarkSubEnrollment(db, "user-1", "course-1", "group-1", true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)

	// Withdrawing from the course closes the membership
	_, err = MarkCourseEnrollment(db, "user-1", "course-1", false, nil, false, nil)
	require.NoError(t, err)

	var closed models.SubEnrollment
	require.NoError(t, db.First(&closed, sub.ID).Error)
	assert.NotNil(t, closed.EndDate)

	courses, err := GetUserCourses(db, "user-1")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestEarlyAccessRedemption(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	err := SetEarlyAccessOnExistingEnrollment(db, "user-1", "course-1")
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = MarkCourseEnrollment(db, "user-1", "course-1", true, nil, false, nil)
	require.NoError(t, err)

	require.NoError(t, SetEarlyAccessOnExistingEnrollment(db, "user-1", "course-1"))

	active, err := GetActiveEnrollment(db, "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, active.IsEarlyAccess)
}

func TestMarkCourseInquiryIsAnonymous(t *testing.T) {
	db := setupTestDb(t)
	seedCourse(t, db, "course-1")

	utm := &models.UtmInfo{Source: "newsletter", Campaign: "fall"}
	inquiry, err := MarkCourseInquiry(db, "someone@example.com", "course-1", true, "group-9", utm)
	require.NoError(t, err)
	assert.NotZero(t, inquiry.ID)
	assert.NotEmpty(t, inquiry.Analytics)
}
