package models

import "time"

type Form struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Title                  string     `gorm:"size:255;not null" json:"title"`
	Description            string     `gorm:"type:text" json:"description"`
	CreatedBy              uint       `gorm:"not null;index" json:"created_by"`
	User                   User       `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"-"`
	AllowMultipleResponses bool       `gorm:"not null;default:true" json:"allow_multiple_responses"`
	RequireEmail           bool       `gorm:"not null;default:false" json:"require_email"`
	Questions              []Question `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Responses              []Response `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
}
