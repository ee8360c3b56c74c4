package store

import (
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/tgaisser/ocb/models"

	"gorm.io/gorm"
)

var videoIdPattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrInvalidVideoId is returned when a submitted video id is not in canonical form.
var ErrInvalidVideoId = errors.New("invalid video id")

// UpsertItemProgress records progress on one item. The stored percentage never
// moves backwards: an update happens only when the new value is higher, or when
// overwrite is set and the item is not yet complete. The advance decision is made
// inside the update statement itself, so concurrent reports commute and the
// highest value always wins. LastActivityDate moves only when a row is actually
// written.
func UpsertItemProgress(db *gorm.DB, userId, itemId, itemType string, progress int, overwrite bool) (int, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"progress_percentage": progress,
		"last_value":          progress,
		"completed":           progress >= 100,
		"last_activity_date":  now,
	}

	var createErr error
	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&models.ItemProgress{}).
			Where("user_id = ? AND item_id = ? AND item_type = ?", userId, itemId, itemType).
			Where("progress_percentage < ? OR (? AND progress_percentage < 100)", progress, overwrite).
			Updates(updates)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected > 0 {
			return progress, nil
		}

		// Either there is no row yet, or the stored value already covers this one
		var current models.ItemProgress
		err := db.Where("user_id = ? AND item_id = ? AND item_type = ?", userId, itemId, itemType).
			First(&current).Error
		if err == nil {
			return current.ProgressPercentage, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}

		createErr = db.Create(&models.ItemProgress{
			UserId:             userId,
			ItemId:             itemId,
			ItemType:           itemType,
			ProgressPercentage: progress,
			LastValue:          progress,
			Completed:          progress >= 100,
			LastActivityDate:   now,
		}).Error
		if createErr == nil {
			return progress, nil
		}
		// Lost an insert race: the row exists now, take the update path
	}
	return 0, createErr
}

// RecordVideoProgress stores a playback position report. Only forward movement is
// persisted: the row keeps the furthest confirmed position per (user, video).
// Returns the watched fraction of the video (0-1), or -1 with an error when the
// video id is malformed. Lecture progress and the course summary are updated from
// the watched fraction.
func RecordVideoProgress(db *gorm.DB, lectureType, userId, courseId, videoId, lectureId string, position int, eventTime time.Time) (float64, error) {
	if !videoIdPattern.MatchString(videoId) {
		log.Printf("Rejected video progress for user %s: bad video id %q", userId, videoId)
		return -1, ErrInvalidVideoId
	}
	if position < 0 {
		position = 0
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"position":           position,
		"event_time":         eventTime,
		"last_activity_date": now,
	}

	// Furthest position wins; the comparison runs inside the statement so
	// interleaved reports cannot overwrite a higher position with a lower one
	furthest := position
	var createErr error
	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&models.UserVideoProgress{}).
			Where("user_id = ? AND video_id = ? AND position < ?", userId, videoId, position).
			Updates(updates)
		if res.Error != nil {
			return -1, res.Error
		}
		if res.RowsAffected > 0 {
			break
		}

		var row models.UserVideoProgress
		err := db.Where("user_id = ? AND video_id = ?", userId, videoId).First(&row).Error
		if err == nil {
			// Report behind the stored position: nothing to write
			furthest = row.Position
			break
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return -1, err
		}

		createErr = db.Create(&models.UserVideoProgress{
			UserId:           userId,
			VideoId:          videoId,
			CourseId:         courseId,
			LectureId:        lectureId,
			LectureType:      lectureType,
			Position:         position,
			EventTime:        eventTime,
			LastActivityDate: now,
		}).Error
		if createErr == nil {
			break
		}
		// Lost an insert race: retry against the now-existing row
		if attempt == 1 {
			return -1, createErr
		}
	}

	watched := watchedFraction(db, videoId, furthest)
	pct := int(watched * 100)
	if _, err := UpsertItemProgress(db, userId, lectureId, lectureType, pct, false); err != nil {
		return watched, err
	}
	if err := UpdateCourseSummary(db, userId, courseId); err != nil {
		return watched, err
	}
	return watched, nil
}

// VideoInterval is one watched span of a playback session (seconds).
type VideoInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RecordBulkVideoProgress folds a session's watched intervals into a single
// furthest-position write. The resulting state is the same as reporting each
// interval's end position individually.
func RecordBulkVideoProgress(db *gorm.DB, lectureType, userId, courseId, videoId, lectureId string, intervals []VideoInterval, eventTime time.Time) (float64, error) {
	if !videoIdPattern.MatchString(videoId) {
		log.Printf("Rejected bulk video progress for user %s: bad video id %q", userId, videoId)
		return -1, ErrInvalidVideoId
	}
	if len(intervals) == 0 {
		// An empty session writes nothing, like zero single-event reports
		var row models.UserVideoProgress
		err := db.Where("user_id = ? AND video_id = ?", userId, videoId).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return -1, err
		}
		return watchedFraction(db, videoId, row.Position), nil
	}
	maxEnd := 0
	for _, iv := range intervals {
		if iv.End > maxEnd {
			maxEnd = iv.End
		}
	}
	return RecordVideoProgress(db, lectureType, userId, courseId, videoId, lectureId, maxEnd, eventTime)
}

func watchedFraction(db *gorm.DB, videoId string, position int) float64 {
	var media models.MediaItem
	if err := db.Where("id = ?", videoId).First(&media).Error; err != nil || media.Duration <= 0 {
		return 0
	}
	f := float64(position) / float64(media.Duration)
	if f > 1 {
		f = 1
	}
	return f
}

// MarkQuizProgress records a quiz outcome on the progress ledger. A regular quiz
// counts as done once attempted, so it always records 100. A final quiz keeps the
// best score: lower attempts leave the row (and its activity date) untouched.
func MarkQuizProgress(db *gorm.DB, userId, quizItemId, itemType string, percentage int) (int, error) {
	if itemType != models.ItemTypeFinalQuiz {
		return UpsertItemProgress(db, userId, quizItemId, itemType, 100, false)
	}
	return UpsertItemProgress(db, userId, quizItemId, itemType, percentage, false)
}

// MarkCourseOpen logs the access and floors course progress at 1% so a course the
// user has looked at never shows as untouched. Never lowers existing progress.
func MarkCourseOpen(db *gorm.DB, userId, courseId string) error {
	if err := db.Create(&models.CourseAccess{UserId: userId, CourseId: courseId}).Error; err != nil {
		return err
	}
	if _, err := UpsertItemProgress(db, userId, courseId, models.ItemTypeCourse, 1, false); err != nil {
		return err
	}
	return UpdateCourseSummary(db, userId, courseId)
}

// MarkLectureOpen logs the access and floors the lecture's progress at 1%.
func MarkLectureOpen(db *gorm.DB, userId, courseId, lectureId, lectureType string) error {
	if err := db.Create(&models.LectureAccess{
		UserId:    userId,
		CourseId:  courseId,
		LectureId: lectureId,
		Type:      lectureType,
	}).Error; err != nil {
		return err
	}
	if _, err := UpsertItemProgress(db, userId, lectureId, lectureType, 1, false); err != nil {
		return err
	}
	return UpdateCourseSummary(db, userId, courseId)
}

// MarkFileDownload logs a course-material download.
func MarkFileDownload(db *gorm.DB, userId, courseId, lectureId, url, fileType string) error {
	switch fileType {
	case models.FileDownloadReading, models.FileDownloadStudyGuide, models.FileDownloadAudio:
	default:
		fileType = models.FileDownloadOther
	}
	return db.Create(&models.UserFileDownload{
		UserId:       userId,
		CourseId:     courseId,
		LectureId:    lectureId,
		DownloadUrl:  url,
		DownloadType: fileType,
	}).Error
}

// itemDone applies the per-type completion rule: a final quiz needs a best score
// of at least 80, everything else needs 100.
func itemDone(itemType string, progress int) bool {
	if itemType == models.ItemTypeFinalQuiz {
		return progress >= 80
	}
	return progress >= 100
}

// UpdateCourseSummary recomputes the pre-aggregated course summary for one
// (user, course): progress is the average over the course's elements, and the
// course is complete when every element is done.
func UpdateCourseSummary(db *gorm.DB, userId, courseId string) error {
	var elems []models.CourseElem
	if err := db.Where("course_id = ? AND deactivate_date IS NULL", courseId).
		Order("order_index").Find(&elems).Error; err != nil {
		return err
	}
	if len(elems) == 0 {
		return nil
	}

	progressById, err := itemProgressByItemId(db, userId)
	if err != nil {
		return err
	}

	total := 0
	allDone := true
	for _, elem := range elems {
		p := 0
		if row, ok := progressById[elem.ElemId]; ok {
			p = row.ProgressPercentage
		}
		total += p
		if !itemDone(elem.ElemType, p) {
			allDone = false
		}
	}
	avg := total / len(elems)

	now := time.Now().UTC()
	var info models.UserCourseInfo
	err = db.Where("user_id = ? AND course_id = ?", userId, courseId).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Not enrolled: nothing to summarize
		return nil
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"progress":           avg,
		"completed":          allDone,
		"last_activity_date": now,
	}
	if allDone && info.CompleteDate == nil {
		updates["complete_date"] = now
	}
	return db.Model(&info).Updates(updates).Error
}

// IsCourseComplete reads the course summary.
func IsCourseComplete(db *gorm.DB, userId, courseId string) (bool, error) {
	var info models.UserCourseInfo
	err := db.Where("user_id = ? AND course_id = ?", userId, courseId).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Completed, nil
}

// itemProgressByItemId collapses the user's progress rows to one per item id,
// first row wins, so duplicate rows (legacy data, type drift) cannot double-count.
func itemProgressByItemId(db *gorm.DB, userId string) (map[string]models.ItemProgress, error) {
	var rows []models.ItemProgress
	if err := db.Where("user_id = ?", userId).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	byId := make(map[string]models.ItemProgress, len(rows))
	for _, row := range rows {
		if _, seen := byId[row.ItemId]; !seen {
			byId[row.ItemId] = row
		}
	}
	return byId, nil
}

// ItemProgressView is one course element with the user's progress joined on.
type ItemProgressView struct {
	ItemId             string     `json:"itemId"`
	ItemType           string     `json:"itemType"`
	Name               string     `json:"name"`
	ProgressPercentage int        `json:"progressPercentage"`
	Completed          bool       `json:"completed"`
	LastActivityDate   *time.Time `json:"lastActivityDate"`
}

// CourseProgressView is the course-level progress report returned to clients.
type CourseProgressView struct {
	CourseId         string                     `json:"courseId"`
	CourseName       string                     `json:"courseName"`
	EnrollmentDate   time.Time                  `json:"enrollmentDate"`
	WithdrawalDate   *time.Time                 `json:"withdrawalDate"`
	Progress         int                        `json:"progress"`
	Completed        bool                       `json:"completed"`
	CompleteDate     *time.Time                 `json:"completeDate"`
	LastActivityDate *time.Time                 `json:"lastActivityDate"`
	Children         []ItemProgressView         `json:"children"`
	Videos           []models.UserVideoProgress `json:"videos,omitempty"`
}

// GetCoursesProgress builds progress reports from the pre-aggregated summary
// rows, one per enrolled, non-deactivated course. courseId narrows to a single
// course when non-empty. Children come from the course's elements joined with
// the user's item progress; a final quiz is shown complete at a best score of
// 80, a regular quiz once attempted. ErrNotEnrolled when a requested course has
// no active enrollment.
func GetCoursesProgress(db *gorm.DB, userId, courseId string, includeVideoDetail bool) ([]CourseProgressView, error) {
	q := db.Where("user_id = ? AND withdrawal_date IS NULL", userId)
	if courseId != "" {
		q = q.Where("course_id = ?", courseId)
	}
	var infos []models.UserCourseInfo
	if err := q.Order("enrollment_date").Find(&infos).Error; err != nil {
		return nil, err
	}

	progressById, err := itemProgressByItemId(db, userId)
	if err != nil {
		return nil, err
	}

	views := make([]CourseProgressView, 0, len(infos))
	for _, info := range infos {
		course, err := GetCourse(db, info.CourseId)
		if err != nil {
			return nil, err
		}
		if course == nil || course.DeactivateDate != nil {
			continue
		}

		view := CourseProgressView{
			CourseId:         info.CourseId,
			CourseName:       course.Name,
			EnrollmentDate:   info.EnrollmentDate,
			WithdrawalDate:   info.WithdrawalDate,
			Progress:         info.Progress,
			Completed:        info.Completed,
			CompleteDate:     info.CompleteDate,
			LastActivityDate: info.LastActivityDate,
		}

		var elems []models.CourseElem
		if err := db.Where("course_id = ? AND deactivate_date IS NULL", info.CourseId).
			Order("order_index").Find(&elems).Error; err != nil {
			return nil, err
		}
		for _, elem := range elems {
			child := ItemProgressView{
				ItemId:   elem.ElemId,
				ItemType: elem.ElemType,
			}
			if row, ok := progressById[elem.ElemId]; ok {
				child.ProgressPercentage = row.ProgressPercentage
				child.Completed = itemDone(elem.ElemType, row.ProgressPercentage)
				t := row.LastActivityDate
				child.LastActivityDate = &t
			}
			switch elem.ElemType {
			case models.ItemTypeQuiz, models.ItemTypeFinalQuiz:
				var quiz models.Quiz
				if err := db.Where("obj_id = ?", elem.ElemId).First(&quiz).Error; err == nil {
					child.Name = quiz.Name
				}
				if elem.ElemType == models.ItemTypeQuiz && child.LastActivityDate != nil {
					// Attempted is enough for a regular quiz
					child.Completed = true
				}
			default:
				var lecture models.Lecture
				if err := db.Where("obj_id = ?", elem.ElemId).First(&lecture).Error; err == nil {
					child.Name = lecture.Name
				}
			}
			view.Children = append(view.Children, child)
		}

		if includeVideoDetail {
			if err := db.Where("user_id = ? AND course_id = ?", userId, info.CourseId).
				Order("last_activity_date desc").
				Find(&view.Videos).Error; err != nil {
				return nil, err
			}
		}

		views = append(views, view)
	}

	if courseId != "" && len(views) == 0 {
		return nil, ErrNotEnrolled
	}
	return views, nil
}
