package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CourseEnrollment is one record in the enrollment history for a (user, course) pair.
// Rows are never deleted: a withdrawal stamps WithdrawalDate and appends a new record,
// so the full enroll/withdraw timeline stays reconstructable. At most one row per
// (user, course) has WithdrawalDate = null.
type CourseEnrollment struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserId           string         `json:"userId" gorm:"index;size:64;not null"`
	CourseId         string         `json:"courseId" gorm:"index;size:64;not null"`
	EnrollmentDate   time.Time      `json:"enrollmentDate"`
	WithdrawalDate   *time.Time     `json:"withdrawalDate"`
	WithdrawalReason *int           `json:"withdrawalReason,omitempty"`
	IsEarlyAccess    bool           `json:"userHasEarlyAccess"`
	Analytics        datatypes.JSON `json:"-"`

	// Joined from the active sub-enrollment, not a column
	StudyGroupId string `json:"studyGroupId,omitempty" gorm:"-"`
}

// SubEnrollment is a historized study-group membership tied to a course enrollment
type SubEnrollment struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	CourseEnrollmentId uint           `json:"courseEnrollmentId" gorm:"index;not null"`
	StudyGroupId       string         `json:"studyGroupId" gorm:"size:64;not null"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            *time.Time     `json:"endDate"`
	WithdrawalReason   *int           `json:"withdrawalReason,omitempty"`
	Analytics          datatypes.JSON `json:"-"`
}

// CourseInquiry is a pre-enrollment interest signal, keyed by email only
type CourseInquiry struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"index;size:255;not null"`
	CourseId      string         `json:"courseId" gorm:"size:64;not null"`
	InquiryDate   time.Time      `json:"inquiryDate"`
	IsEarlyAccess bool           `json:"userHasEarlyAccess"`
	StudyGroupId  string         `json:"studyGroupId,omitempty" gorm:"size:64"`
	Analytics     datatypes.JSON `json:"-"`
}

// UtmInfo carries marketing attribution codes passed through on enrollment requests
type UtmInfo struct {
	Source        string `json:"utm_source,omitempty" query:"utm_source"`
	Medium        string `json:"utm_medium,omitempty" query:"utm_medium"`
	Content       string `json:"utm_content,omitempty" query:"utm_content"`
	Campaign      string `json:"utm_campaign,omitempty" query:"utm_campaign"`
	Term          string `json:"utm_term,omitempty" query:"utm_term"`
	AppealCode    string `json:"appeal_code,omitempty" query:"appeal_code"`
	SourceCode    string `json:"sc,omitempty" query:"sc"`
	SourcePartner string `json:"source_partner,omitempty" query:"source_partner"`
	GoogleClickID string `json:"gclid,omitempty" query:"gclid"`
}

// Stringify serializes the UTM codes, omitting empty fields
func (u *UtmInfo) Stringify() string {
	if u == nil {
		return ""
	}
	b, err := json.Marshal(u)
	if err != nil {
		return ""
	}
	return string(b)
}

// IsEmpty reports whether no attribution codes were supplied
func (u *UtmInfo) IsEmpty() bool {
	return u == nil || *u == UtmInfo{}
}
