package models

import "time"

// Response belongs to one form. UserID is nil for anonymous submissions, in
// which case RespondentEmail and IPAddress identify the respondent for the
// duplicate-submission check.
type Response struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FormID          uint      `gorm:"not null;index" json:"form_id"`
	UserID          *uint     `gorm:"index" json:"user_id,omitempty"`
	User            *User     `gorm:"foreignKey:UserID" json:"-"`
	RespondentEmail string    `gorm:"size:255" json:"respondent_email,omitempty"`
	IPAddress       string    `gorm:"size:45" json:"-"`
	Answers         []Answer  `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}
