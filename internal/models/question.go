package models

const (
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeParagraph      = "paragraph"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeCheckboxes     = "checkboxes"
	QuestionTypeDropdown       = "dropdown"
	QuestionTypeDate           = "date"
	QuestionTypeTime           = "time"
	QuestionTypeFileUpload     = "file_upload"
	QuestionTypeImage          = "image"
	QuestionTypeImageUpload    = "image_upload"
)

// KnownQuestionType reports whether t is one of the supported question types.
func KnownQuestionType(t string) bool {
	switch t {
	case QuestionTypeShortAnswer, QuestionTypeParagraph, QuestionTypeMultipleChoice,
		QuestionTypeCheckboxes, QuestionTypeDropdown, QuestionTypeDate, QuestionTypeTime,
		QuestionTypeFileUpload, QuestionTypeImage, QuestionTypeImageUpload:
		return true
	}
	return false
}

// Question stores type-specific configuration in TEXT columns holding encoded
// JSON (see internal/codec). Only the fields matching QuestionType carry data;
// the rest stay empty.
type Question struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FormID       uint   `gorm:"not null;index" json:"form_id"`
	QuestionText string `gorm:"type:text;not null" json:"question_text"`
	QuestionType string `gorm:"size:20;not null" json:"question_type"`
	Required     bool   `gorm:"not null;default:true" json:"required"`
	Placeholder  string `gorm:"size:255" json:"placeholder"`
	Content      string `gorm:"type:text" json:"content"`
	ImageURL     string `gorm:"size:500" json:"image_url"`

	MaxImages         int    `gorm:"not null;default:1" json:"max_images"`
	ImageOnly         bool   `gorm:"not null;default:false" json:"image_only"`
	EnableCheckboxes  bool   `gorm:"not null;default:false" json:"enable_checkboxes"`
	EnableMultiChoice bool   `gorm:"column:enable_multiple_choice;not null;default:false" json:"enable_multiple_choice"`
	MultiChoiceLabel  string `gorm:"column:multiple_choice_label;size:255" json:"multiple_choice_label"`
	ChoiceQuestion    string `gorm:"size:255" json:"choice_question"`
	EnableAdminImages bool   `gorm:"not null;default:false" json:"enable_admin_images"`

	// Encoded JSON, decoded only at the serialization boundary.
	Options            string `gorm:"type:text" json:"-"`
	CheckboxOptions    string `gorm:"type:text" json:"-"`
	ChoiceOptions      string `gorm:"type:text" json:"-"`
	MultiChoiceOptions string `gorm:"column:multiple_choice_options;type:text" json:"-"`
	AdminImages        string `gorm:"type:text" json:"-"`
	Annotations        string `gorm:"type:text" json:"-"`
	ImageOptions       string `gorm:"type:text" json:"-"`
}
