package store

import (
	"errors"
	"log"
	"time"

	"github.com/tgaisser/ocb/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotEnrolled is returned when an operation needs an active enrollment and none exists.
var ErrNotEnrolled = errors.New("user is not enrolled in course")

func utmJson(utm *models.UtmInfo) datatypes.JSON {
	if utm.IsEmpty() {
		return nil
	}
	return datatypes.JSON(utm.Stringify())
}

// GetActiveEnrollment returns the one enrollment row for (user, course) that has
// not been withdrawn, or nil when there is none.
func GetActiveEnrollment(db *gorm.DB, userId, courseId string) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := db.Where("user_id = ? AND course_id = ? AND withdrawal_date IS NULL", userId, courseId).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// MarkCourseEnrollment enrolls or withdraws a user. History is preserved: enrolling
// while already enrolled returns the existing active row unchanged; withdrawing
// stamps the active row and appends a withdrawal record, so a later re-enrollment
// starts a fresh row.
func MarkCourseEnrollment(db *gorm.DB, userId, courseId string, enroll bool, withdrawalReason *int, earlyAccess bool, utm *models.UtmInfo) (*models.CourseEnrollment, error) {
	active, err := GetActiveEnrollment(db, userId, courseId)
	if err != nil {
		log.Printf("Failed to look up enrollment for user %s course %s: %v", userId, courseId, err)
		return nil, err
	}

	now := time.Now().UTC()

	if enroll {
		if active != nil {
			return active, nil
		}
		enrollment := models.CourseEnrollment{
			UserId:         userId,
			CourseId:       courseId,
			EnrollmentDate: now,
			IsEarlyAccess:  earlyAccess,
			Analytics:      utmJson(utm),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
			return upsertCourseInfoEnrollment(tx, userId, courseId, now)
		})
		if err != nil {
			log.Printf("Failed to enroll user %s in course %s: %v", userId, courseId, err)
			return nil, err
		}
		return &enrollment, nil
	}

	// Withdrawal
	if active == nil {
		return nil, ErrNotEnrolled
	}

	record := models.CourseEnrollment{
		UserId:           userId,
		CourseId:         courseId,
		EnrollmentDate:   active.EnrollmentDate,
		WithdrawalDate:   &now,
		WithdrawalReason: withdrawalReason,
		IsEarlyAccess:    active.IsEarlyAccess,
		Analytics:        utmJson(utm),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CourseEnrollment{}).
			Where("id = ?", active.ID).
			Updates(map[string]interface{}{
				"withdrawal_date":   now,
				"withdrawal_reason": withdrawalReason,
			}).Error; err != nil {
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		// End any open study-group membership tied to the withdrawn enrollment
		if err := tx.Model(&models.SubEnrollment{}).
			Where("course_enrollment_id = ? AND end_date IS NULL", active.ID).
			Updates(map[string]interface{}{"end_date": now, "withdrawal_reason": withdrawalReason}).
			Error; err != nil {
			return err
		}
		return tx.Model(&models.UserCourseInfo{}).
			Where("user_id = ? AND course_id = ?", userId, courseId).
			Update("withdrawal_date", now).Error
	})
	if err != nil {
		log.Printf("Failed to withdraw user %s from course %s: %v", userId, courseId, err)
		return nil, err
	}
	active.WithdrawalDate = &now
	active.WithdrawalReason = withdrawalReason
	return active, nil
}

func upsertCourseInfoEnrollment(tx *gorm.DB, userId, courseId string, enrolledAt time.Time) error {
	var info models.UserCourseInfo
	err := tx.Where("user_id = ? AND course_id = ?", userId, courseId).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.UserCourseInfo{
			UserId:         userId,
			CourseId:       courseId,
			EnrollmentDate: enrolledAt,
		}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&info).Updates(map[string]interface{}{
		"enrollment_date": enrolledAt,
		"withdrawal_date": nil,
	}).Error
}

// MarkSubEnrollment joins or leaves a study group under the user's active course
// enrollment, with the same history-preserving contract as course enrollment.
func MarkSubEnrollment(db *gorm.DB, userId, courseId, studyGroupId string, join bool, withdrawalReason *int, utm *models.UtmInfo) (*models.SubEnrollment, error) {
	active, err := GetActiveEnrollment(db, userId, courseId)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNotEnrolled
	}

	var current models.SubEnrollment
	err = db.Where("course_enrollment_id = ? AND study_group_id = ? AND end_date IS NULL", active.ID, studyGroupId).
		First(&current).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	if join {
		if found {
			return &current, nil
		}
		sub := models.SubEnrollment{
			CourseEnrollmentId: active.ID,
			StudyGroupId:       studyGroupId,
			StartDate:          now,
			Analytics:          utmJson(utm),
		}
		if err := db.Create(&sub).Error; err != nil {
			log.Printf("Failed to add user %s to study group %s: %v", userId, studyGroupId, err)
			return nil, err
		}
		return &sub, nil
	}

	if !found {
		return nil, ErrNotEnrolled
	}
	if err := db.Model(&current).
		Updates(map[string]interface{}{"end_date": now, "withdrawal_reason": withdrawalReason}).
		Error; err != nil {
		log.Printf("Failed to remove user %s from study group %s: %v", userId, studyGroupId, err)
		return nil, err
	}
	current.EndDate = &now
	current.WithdrawalReason = withdrawalReason
	return &current, nil
}

// MarkCourseInquiry records pre-enrollment interest. Anonymous callers are allowed;
// the row is keyed by email only.
func MarkCourseInquiry(db *gorm.DB, email, courseId string, earlyAccess bool, studyGroupId string, utm *models.UtmInfo) (*models.CourseInquiry, error) {
	inquiry := models.CourseInquiry{
		Email:         email,
		CourseId:      courseId,
		InquiryDate:   time.Now().UTC(),
		IsEarlyAccess: earlyAccess,
		StudyGroupId:  studyGroupId,
		Analytics:     utmJson(utm),
	}
	if err := db.Create(&inquiry).Error; err != nil {
		log.Printf("Failed to record inquiry for %s on course %s: %v", email, courseId, err)
		return nil, err
	}
	return &inquiry, nil
}

// GetUserCourses lists the user's active enrollments, each carrying the study group
// the user is currently in (if any).
func GetUserCourses(db *gorm.DB, userId string) ([]models.CourseEnrollment, error) {
	var enrollments []models.CourseEnrollment
	err := db.Where("user_id = ? AND withdrawal_date IS NULL", userId).
		Order("enrollment_date").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	for i := range enrollments {
		var sub models.SubEnrollment
		err := db.Where("course_enrollment_id = ? AND end_date IS NULL", enrollments[i].ID).
			First(&sub).Error
		if err == nil {
			enrollments[i].StudyGroupId = sub.StudyGroupId
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return enrollments, nil
}

// GetWithdrawalReasons returns the active withdrawal-reason picklist.
func GetWithdrawalReasons(db *gorm.DB) ([]models.WithdrawalReason, error) {
	var reasons []models.WithdrawalReason
	err := db.Where("deactivate_date IS NULL").Order("id").Find(&reasons).Error
	return reasons, err
}

// SetEarlyAccessOnExistingEnrollment flips the early-access flag on the user's
// active enrollment. Returns ErrNotEnrolled when there is none.
func SetEarlyAccessOnExistingEnrollment(db *gorm.DB, userId, courseId string) error {
	active, err := GetActiveEnrollment(db, userId, courseId)
	if err != nil {
		return err
	}
	if active == nil {
		return ErrNotEnrolled
	}
	return db.Model(active).Update("is_early_access", true).Error
}

// GetCourse looks a course up by its object id.
func GetCourse(db *gorm.DB, courseId string) (*models.Course, error) {
	var course models.Course
	err := db.Where("obj_id = ?", courseId).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourseHubspotKey returns the CRM list key for a course, empty when the course
// is unknown or has no key.
func GetCourseHubspotKey(db *gorm.DB, courseId string) (string, error) {
	course, err := GetCourse(db, courseId)
	if err != nil || course == nil {
		return "", err
	}
	return course.HubspotKey, nil
}
