package models

// Answer holds one question's recorded value within a response. The nullable
// TEXT columns carry encoded JSON; at most the fields relevant to the parent
// question's type are populated.
type Answer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ResponseID uint `gorm:"not null;index" json:"response_id"`
	QuestionID uint `gorm:"not null;index" json:"question_id"`
	// No FK on QuestionID: replacing a form's question set leaves answers
	// behind as dangling rows, which readers skip.
	Question   Question `gorm:"foreignKey:QuestionID;constraint:-" json:"-"`
	AnswerText string   `gorm:"type:text" json:"answer_text"`

	ImagePaths      *string `gorm:"type:text" json:"-"`
	FilePaths       *string `gorm:"type:text" json:"-"`
	SelectedOptions *string `gorm:"type:text" json:"-"`
	SelectedChoices *string `gorm:"type:text" json:"-"`
	ImageURLs       *string `gorm:"column:image_urls;type:text" json:"-"`
	ImageResponses  *string `gorm:"type:text" json:"-"`
}
