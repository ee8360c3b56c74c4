package store

import (
	"errors"
	"log"
	"time"

	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/utils"

	"gorm.io/gorm"
)

// SaveNote encrypts and stores the user's note for a lecture, updating in place
// when one already exists.
func SaveNote(db *gorm.DB, secret, userId, courseId, lectureId, text string) (*models.Note, error) {
	encrypted, err := utils.EncryptNote(secret, text)
	if err != nil {
		log.Printf("Failed to encrypt note for user %s lecture %s: %v", userId, lectureId, err)
		return nil, err
	}

	now := time.Now().UTC()

	var note models.Note
	err = db.Where("user_id = ? AND course_id = ? AND lecture_id = ?", userId, courseId, lectureId).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		note = models.Note{
			UserId:     userId,
			CourseId:   courseId,
			LectureId:  lectureId,
			NoteText:   encrypted,
			CreateDate: now,
		}
		if err := db.Create(&note).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		if err := db.Model(&note).Updates(map[string]interface{}{
			"note_text":   encrypted,
			"update_date": now,
		}).Error; err != nil {
			return nil, err
		}
		note.UpdateDate = &now
	}

	note.Text = text
	return &note, nil
}

func decryptNotes(db *gorm.DB, secret string, notes []models.Note) []models.Note {
	for i := range notes {
		text, err := utils.DecryptNote(secret, notes[i].NoteText)
		if err != nil {
			log.Printf("Failed to decrypt note %d: %v", notes[i].ID, err)
			continue
		}
		notes[i].Text = text
		var lecture models.Lecture
		if err := db.Where("obj_id = ?", notes[i].LectureId).First(&lecture).Error; err == nil {
			notes[i].LectureName = lecture.Name
		}
	}
	return notes
}

// GetNote returns the user's decrypted note for one lecture, nil when absent.
func GetNote(db *gorm.DB, secret, userId, courseId, lectureId string) (*models.Note, error) {
	var note models.Note
	err := db.Where("user_id = ? AND course_id = ? AND lecture_id = ?", userId, courseId, lectureId).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	decrypted := decryptNotes(db, secret, []models.Note{note})
	return &decrypted[0], nil
}

// GetNotes returns the user's decrypted notes, optionally limited to one course.
func GetNotes(db *gorm.DB, secret, userId, courseId string) ([]models.Note, error) {
	q := db.Where("user_id = ?", userId)
	if courseId != "" {
		q = q.Where("course_id = ?", courseId)
	}
	var notes []models.Note
	if err := q.Order("create_date").Find(&notes).Error; err != nil {
		return nil, err
	}
	return decryptNotes(db, secret, notes), nil
}

// GetNoteHeaders lists the user's notes without decrypting any text, for index
// views that only need where notes exist and when they changed.
func GetNoteHeaders(db *gorm.DB, userId, courseId string) ([]models.Note, error) {
	q := db.Where("user_id = ?", userId)
	if courseId != "" {
		q = q.Where("course_id = ?", courseId)
	}
	var notes []models.Note
	err := q.Select("id", "user_id", "course_id", "lecture_id", "create_date", "update_date").
		Order("create_date").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	for i := range notes {
		var lecture models.Lecture
		if err := db.Where("obj_id = ?", notes[i].LectureId).First(&lecture).Error; err == nil {
			notes[i].LectureName = lecture.Name
		}
	}
	return notes, nil
}
