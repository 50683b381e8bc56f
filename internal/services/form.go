package services

import (
	"fmt"

	"form-builder-backend/internal/codec"
	"form-builder-backend/internal/models"

	"gorm.io/gorm"
)

type FormService struct {
	db *gorm.DB
}

func NewFormService(db *gorm.DB) *FormService {
	return &FormService{db: db}
}

// FieldInput is one question definition as sent by the form designer.
type FieldInput struct {
	Label                 string              `json:"label"`
	Type                  string              `json:"type"`
	Required              *bool               `json:"required"`
	Placeholder           string              `json:"placeholder"`
	Options               []string            `json:"options"`
	Content               string              `json:"content"`
	ImageURL              string              `json:"image_url"`
	MaxImages             int                 `json:"max_images"`
	ImageOnly             bool                `json:"image_only"`
	CheckboxOptions       []string            `json:"checkbox_options"`
	ChoiceQuestion        string              `json:"choice_question"`
	ChoiceOptions         []string            `json:"choice_options"`
	EnableCheckboxes      bool                `json:"enable_checkboxes"`
	EnableMultipleChoice  bool                `json:"enable_multiple_choice"`
	MultipleChoiceLabel   string              `json:"multiple_choice_label"`
	MultipleChoiceOptions []string            `json:"multiple_choice_options"`
	ImageOptions          *codec.ImageOptions `json:"image_options"`
	Annotations           []codec.Annotation  `json:"annotations"`
	AdminImages           []string            `json:"adminImages"`
	EnableAdminImages     bool                `json:"enableAdminImages"`
}

// FieldPayload is the denormalized question projection returned to the form
// owner, with every stored JSON field decoded.
type FieldPayload struct {
	ID                    uint               `json:"id"`
	Label                 string             `json:"label"`
	Type                  string             `json:"type"`
	Required              bool               `json:"required"`
	Placeholder           string             `json:"placeholder"`
	Options               []string           `json:"options"`
	Content               string             `json:"content"`
	ImageURL              string             `json:"image_url,omitempty"`
	MaxImages             int                `json:"max_images"`
	ImageOnly             bool               `json:"image_only"`
	CheckboxOptions       []string           `json:"checkbox_options"`
	ChoiceQuestion        string             `json:"choice_question"`
	ChoiceOptions         []string           `json:"choice_options"`
	EnableCheckboxes      bool               `json:"enable_checkboxes"`
	EnableMultipleChoice  bool               `json:"enable_multiple_choice"`
	MultipleChoiceLabel   string             `json:"multiple_choice_label"`
	MultipleChoiceOptions []string           `json:"multiple_choice_options"`
	ImageOptions          codec.ImageOptions `json:"image_options"`
	Annotations           []codec.Annotation `json:"annotations"`
	AdminImages           []string           `json:"adminImages"`
	EnableAdminImages     bool               `json:"enableAdminImages"`
}

// PublicField is the respondent-facing projection. Questions are keyed by
// uid and the form carries no owner metadata.
type PublicField struct {
	UID                   uint               `json:"uid"`
	Label                 string             `json:"label"`
	Type                  string             `json:"type"`
	Required              bool               `json:"required"`
	Placeholder           string             `json:"placeholder"`
	Options               []string           `json:"options"`
	Content               string             `json:"content,omitempty"`
	MaxImages             int                `json:"max_images"`
	CheckboxOptions       []string           `json:"checkbox_options"`
	ChoiceQuestion        string             `json:"choice_question"`
	ChoiceOptions         []string           `json:"choice_options"`
	MultipleChoiceLabel   string             `json:"multiple_choice_label"`
	MultipleChoiceOptions []string           `json:"multiple_choice_options"`
	ImageOptions          codec.ImageOptions `json:"image_options"`
	Annotations           []codec.Annotation `json:"annotations"`
	AdminImages           []string           `json:"adminImages"`
	EnableAdminImages     bool               `json:"enableAdminImages"`
}

type FormPayload struct {
	ID                     uint           `json:"id"`
	Title                  string         `json:"title"`
	Description            string         `json:"description"`
	CreatedBy              uint           `json:"created_by"`
	AllowMultipleResponses bool           `json:"allow_multiple_responses"`
	RequireEmail           bool           `json:"require_email"`
	Fields                 []FieldPayload `json:"fields"`
}

type PublicFormPayload struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Fields      []PublicField `json:"fields"`
}

type FormSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   uint   `json:"created_by"`
}

func (s *FormService) CreateForm(ownerID uint, title, description string, allowMultiple, requireEmail *bool, fields []FieldInput) (*FormPayload, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	for _, f := range fields {
		if !models.KnownQuestionType(f.Type) {
			return nil, fmt.Errorf("%w: unknown question type %q", ErrValidation, f.Type)
		}
	}

	form := models.Form{
		Title:                  title,
		Description:            description,
		CreatedBy:              ownerID,
		AllowMultipleResponses: true,
	}
	if allowMultiple != nil {
		form.AllowMultipleResponses = *allowMultiple
	}
	if requireEmail != nil {
		form.RequireEmail = *requireEmail
	}
	if err := s.db.Create(&form).Error; err != nil {
		return nil, err
	}

	for _, f := range fields {
		q := questionFromField(form.ID, f)
		if err := s.db.Create(&q).Error; err != nil {
			return nil, err
		}
	}

	// Re-read from storage so the returned fields are the canonical decoded
	// form of what was persisted, not the raw input.
	return s.GetForm(form.ID, ownerID, true)
}

func (s *FormService) GetForm(formID, callerID uint, isAdmin bool) (*FormPayload, error) {
	var form models.Form
	if err := s.db.Preload("Questions").First(&form, formID).Error; err != nil {
		return nil, ErrNotFound
	}
	if form.CreatedBy != callerID && !isAdmin {
		return nil, ErrForbidden
	}

	payload := &FormPayload{
		ID:                     form.ID,
		Title:                  form.Title,
		Description:            form.Description,
		CreatedBy:              form.CreatedBy,
		AllowMultipleResponses: form.AllowMultipleResponses,
		RequireEmail:           form.RequireEmail,
		Fields:                 []FieldPayload{},
	}
	for _, q := range form.Questions {
		payload.Fields = append(payload.Fields, fieldFromQuestion(q))
	}
	return payload, nil
}

func (s *FormService) GetPublicForm(formID uint) (*PublicFormPayload, error) {
	var form models.Form
	if err := s.db.Preload("Questions").First(&form, formID).Error; err != nil {
		return nil, ErrNotFound
	}

	payload := &PublicFormPayload{
		ID:          form.ID,
		Title:       form.Title,
		Description: form.Description,
		Fields:      []PublicField{},
	}
	for _, q := range form.Questions {
		payload.Fields = append(payload.Fields, publicFieldFromQuestion(q))
	}
	return payload, nil
}

// ListForms returns summaries of the caller's forms, or of every form for
// admins, newest first.
func (s *FormService) ListForms(callerID uint, isAdmin bool) ([]FormSummary, error) {
	query := s.db.Model(&models.Form{}).Order("created_at DESC")
	if !isAdmin {
		query = query.Where("created_by = ?", callerID)
	}

	var forms []models.Form
	if err := query.Find(&forms).Error; err != nil {
		return nil, err
	}

	summaries := []FormSummary{}
	for _, f := range forms {
		summaries = append(summaries, FormSummary{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			CreatedAt:   f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			CreatedBy:   f.CreatedBy,
		})
	}
	return summaries, nil
}

// UpdateForm replaces the whole question set: existing questions are dropped
// and the new list inserted. Answers pointing at dropped question ids stay
// behind as dangling rows; readers skip them.
func (s *FormService) UpdateForm(formID, callerID uint, isAdmin bool, title, description string, fields []FieldInput) (*FormPayload, error) {
	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		return nil, ErrNotFound
	}
	if form.CreatedBy != callerID && !isAdmin {
		return nil, ErrForbidden
	}
	for _, f := range fields {
		if !models.KnownQuestionType(f.Type) {
			return nil, fmt.Errorf("%w: unknown question type %q", ErrValidation, f.Type)
		}
	}

	if title != "" {
		form.Title = title
	}
	if description != "" {
		form.Description = description
	}

	tx := s.db.Begin()
	if err := tx.Save(&form).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("form_id = ?", form.ID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, f := range fields {
		q := questionFromField(form.ID, f)
		if err := tx.Create(&q).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	tx.Commit()

	return s.GetForm(form.ID, callerID, isAdmin)
}

// DeleteForm cascades to questions, responses and answers.
func (s *FormService) DeleteForm(formID, callerID uint, isAdmin bool) error {
	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		return ErrNotFound
	}
	if form.CreatedBy != callerID && !isAdmin {
		return ErrForbidden
	}

	tx := s.db.Begin()
	if err := tx.Where("response_id IN (SELECT id FROM responses WHERE form_id = ?)", formID).
		Delete(&models.Answer{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("form_id = ?", formID).Delete(&models.Response{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("form_id = ?", formID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&form).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func questionFromField(formID uint, f FieldInput) models.Question {
	required := true
	if f.Required != nil {
		required = *f.Required
	}
	maxImages := f.MaxImages
	if maxImages < 1 {
		maxImages = 1
	}

	var imageOptions codec.ImageOptions
	if f.ImageOptions != nil {
		imageOptions = *f.ImageOptions
	}

	return models.Question{
		FormID:             formID,
		QuestionText:       f.Label,
		QuestionType:       f.Type,
		Required:           required,
		Placeholder:        f.Placeholder,
		Content:            f.Content,
		ImageURL:           f.ImageURL,
		MaxImages:          maxImages,
		ImageOnly:          f.ImageOnly,
		EnableCheckboxes:   f.EnableCheckboxes,
		EnableMultiChoice:  f.EnableMultipleChoice,
		MultiChoiceLabel:   f.MultipleChoiceLabel,
		ChoiceQuestion:     f.ChoiceQuestion,
		EnableAdminImages:  f.EnableAdminImages,
		Options:            codec.EncodeStrings(f.Options),
		CheckboxOptions:    codec.EncodeStrings(f.CheckboxOptions),
		ChoiceOptions:      codec.EncodeStrings(f.ChoiceOptions),
		MultiChoiceOptions: codec.EncodeStrings(f.MultipleChoiceOptions),
		AdminImages:        codec.EncodeStrings(f.AdminImages),
		Annotations:        codec.EncodeAnnotations(f.Annotations),
		ImageOptions:       codec.EncodeImageOptions(imageOptions),
	}
}

func fieldFromQuestion(q models.Question) FieldPayload {
	return FieldPayload{
		ID:                    q.ID,
		Label:                 q.QuestionText,
		Type:                  q.QuestionType,
		Required:              q.Required,
		Placeholder:           q.Placeholder,
		Options:               codec.DecodeStrings(q.Options),
		Content:               q.Content,
		ImageURL:              q.ImageURL,
		MaxImages:             q.MaxImages,
		ImageOnly:             q.ImageOnly,
		CheckboxOptions:       codec.DecodeStrings(q.CheckboxOptions),
		ChoiceQuestion:        q.ChoiceQuestion,
		ChoiceOptions:         codec.DecodeStrings(q.ChoiceOptions),
		EnableCheckboxes:      q.EnableCheckboxes,
		EnableMultipleChoice:  q.EnableMultiChoice,
		MultipleChoiceLabel:   q.MultiChoiceLabel,
		MultipleChoiceOptions: codec.DecodeStrings(q.MultiChoiceOptions),
		ImageOptions:          codec.DecodeImageOptions(q.ImageOptions),
		Annotations:           codec.DecodeAnnotations(q.Annotations),
		AdminImages:           codec.DecodeStrings(q.AdminImages),
		EnableAdminImages:     q.EnableAdminImages,
	}
}

func publicFieldFromQuestion(q models.Question) PublicField {
	return PublicField{
		UID:                   q.ID,
		Label:                 q.QuestionText,
		Type:                  q.QuestionType,
		Required:              q.Required,
		Placeholder:           q.Placeholder,
		Options:               codec.DecodeStrings(q.Options),
		Content:               q.Content,
		MaxImages:             q.MaxImages,
		CheckboxOptions:       codec.DecodeStrings(q.CheckboxOptions),
		ChoiceQuestion:        q.ChoiceQuestion,
		ChoiceOptions:         codec.DecodeStrings(q.ChoiceOptions),
		MultipleChoiceLabel:   q.MultiChoiceLabel,
		MultipleChoiceOptions: codec.DecodeStrings(q.MultiChoiceOptions),
		ImageOptions:          codec.DecodeImageOptions(q.ImageOptions),
		Annotations:           codec.DecodeAnnotations(q.Annotations),
		AdminImages:           codec.DecodeStrings(q.AdminImages),
		EnableAdminImages:     q.EnableAdminImages,
	}
}
