package services

import (
	"fmt"
	"strings"
	"time"

	"form-builder-backend/internal/codec"
	"form-builder-backend/internal/models"

	"gorm.io/gorm"
)

// ResponseService reassembles stored answers per response for JSON display
// and flattened CSV export.
type ResponseService struct {
	db *gorm.DB
}

func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{db: db}
}

type RespondentPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AnswerPayload struct {
	Question                string                 `json:"question"`
	Type                    string                 `json:"type"`
	AnswerText              *string                `json:"answerText"`
	ImageURLs               []string               `json:"imageUrls"`
	Files                   []string               `json:"files"`
	CheckboxSelections      []string               `json:"checkboxSelections"`
	MultipleChoiceSelection *string                `json:"multipleChoiceSelection"`
	ImageResponses          []codec.ImageSelection `json:"imageResponses"`
}

type ResponsePayload struct {
	ID          uint              `json:"id"`
	SubmittedAt time.Time         `json:"submittedAt"`
	Respondent  RespondentPayload `json:"respondent"`
	Answers     []AnswerPayload   `json:"answers"`
}

// ListResponses returns every response to the form with decoded answers,
// newest first. Only the form's owner or an admin may call.
func (s *ResponseService) ListResponses(formID, callerID uint, isAdmin bool) ([]ResponsePayload, error) {
	if err := s.authorize(formID, callerID, isAdmin); err != nil {
		return nil, err
	}

	var responses []models.Response
	err := s.db.Where("form_id = ?", formID).
		Preload("Answers").
		Preload("Answers.Question").
		Preload("User").
		Order("submitted_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	payloads := []ResponsePayload{}
	for _, r := range responses {
		p := ResponsePayload{
			ID:          r.ID,
			SubmittedAt: r.SubmittedAt,
			Respondent:  respondentOf(r),
			Answers:     []AnswerPayload{},
		}
		for _, a := range r.Answers {
			// Dangling answers reference questions removed by a later
			// form edit; skip them.
			if a.Question.ID == 0 {
				continue
			}
			p.Answers = append(p.Answers, answerPayload(a))
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// ExportCSV flattens the form's responses: four fixed leading columns, then
// one column per question in ascending id order. Every cell is wrapped in
// double quotes with inner quotes doubled; a question a response never
// answered reads "No response".
func (s *ResponseService) ExportCSV(formID, callerID uint, isAdmin bool) (string, error) {
	if err := s.authorize(formID, callerID, isAdmin); err != nil {
		return "", err
	}

	var questions []models.Question
	if err := s.db.Where("form_id = ?", formID).Order("id ASC").Find(&questions).Error; err != nil {
		return "", err
	}

	var responses []models.Response
	err := s.db.Where("form_id = ?", formID).
		Preload("Answers").
		Preload("User").
		Order("submitted_at DESC").
		Find(&responses).Error
	if err != nil {
		return "", err
	}

	header := []string{"Submission ID", "Submitted At", "Respondent Name", "Respondent Email"}
	for _, q := range questions {
		header = append(header, q.QuestionText)
	}

	var b strings.Builder
	writeCSVRow(&b, header)

	for _, r := range responses {
		answerByQuestion := map[uint]string{}
		for _, a := range r.Answers {
			if v := displayValue(a); v != "" {
				answerByQuestion[a.QuestionID] = v
			} else {
				answerByQuestion[a.QuestionID] = "No response"
			}
		}

		respondent := respondentOf(r)
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.SubmittedAt.Format(time.RFC3339),
			respondent.Name,
			respondent.Email,
		}
		for _, q := range questions {
			v, ok := answerByQuestion[q.ID]
			if !ok {
				v = "No response"
			}
			row = append(row, v)
		}
		writeCSVRow(&b, row)
	}

	return b.String(), nil
}

func (s *ResponseService) authorize(formID, callerID uint, isAdmin bool) error {
	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		return ErrNotFound
	}
	if form.CreatedBy != callerID && !isAdmin {
		return ErrForbidden
	}
	return nil
}

func respondentOf(r models.Response) RespondentPayload {
	if r.User != nil && r.User.ID != 0 {
		return RespondentPayload{Name: r.User.Name, Email: r.User.Email}
	}
	email := r.RespondentEmail
	if email == "" {
		email = "N/A"
	}
	return RespondentPayload{Name: "Anonymous", Email: email}
}

func answerPayload(a models.Answer) AnswerPayload {
	p := AnswerPayload{
		Question:       a.Question.QuestionText,
		Type:           a.Question.QuestionType,
		ImageResponses: []codec.ImageSelection{},
	}
	if a.AnswerText != "" {
		text := a.AnswerText
		p.AnswerText = &text
	}
	if a.ImageURLs != nil {
		p.ImageURLs = codec.DecodeStrings(*a.ImageURLs)
	}
	if a.FilePaths != nil {
		p.Files = codec.DecodeStrings(*a.FilePaths)
	}
	if a.SelectedOptions != nil {
		p.CheckboxSelections = codec.DecodeStrings(*a.SelectedOptions)
	}
	if a.SelectedChoices != nil {
		if v := codec.DecodeText(*a.SelectedChoices); v != "" {
			p.MultipleChoiceSelection = &v
		}
	}
	if a.ImageResponses != nil {
		p.ImageResponses = codec.DecodeImageSelections(*a.ImageResponses)
	}
	return p
}

// displayValue picks one string per answer for the CSV cell. A structured
// URL list wins over plain text; list values are joined with ", ".
func displayValue(a models.Answer) string {
	if a.ImageURLs != nil {
		if urls := codec.DecodeStrings(*a.ImageURLs); len(urls) > 0 {
			return strings.Join(urls, ", ")
		}
	}
	if a.AnswerText != "" {
		// file_upload answers keep their URL list in the text column.
		if urls := codec.DecodeStrings(a.AnswerText); len(urls) > 0 {
			return strings.Join(urls, ", ")
		}
		return codec.DecodeText(a.AnswerText)
	}
	if a.SelectedOptions != nil {
		if opts := codec.DecodeStrings(*a.SelectedOptions); len(opts) > 0 {
			return strings.Join(opts, ", ")
		}
	}
	if a.SelectedChoices != nil {
		if v := codec.DecodeText(*a.SelectedChoices); v != "" {
			return v
		}
	}
	return ""
}

// writeCSVRow emits one line with every cell quoted and inner quotes
// doubled. An empty cell is emitted as "".
func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
