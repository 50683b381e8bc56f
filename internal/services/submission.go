package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"form-builder-backend/internal/codec"
	"form-builder-backend/internal/models"
	"form-builder-backend/internal/storage"

	"gorm.io/gorm"
)

// SubmissionService accepts responses to public forms. Files have already
// been written to the local store by the handler; the service matches them to
// questions by field name and optionally mirrors them to Google Drive.
type SubmissionService struct {
	db    *gorm.DB
	store *storage.LocalStore
	drive *storage.DriveClient
}

// NewSubmissionService wires the pipeline. drive may be nil, in which case no
// mirroring happens.
func NewSubmissionService(db *gorm.DB, store *storage.LocalStore, drive *storage.DriveClient) *SubmissionService {
	return &SubmissionService{db: db, store: store, drive: drive}
}

// AnswerInput is one entry of the multipart "answers" JSON array. Text is a
// raw value because checkbox answers arrive as string arrays while everything
// else arrives as a plain string.
type AnswerInput struct {
	FieldUID                uint                   `json:"fieldUid"`
	Type                    string                 `json:"type"`
	Text                    json.RawMessage        `json:"text"`
	CheckboxSelections      []codec.ImageSelection `json:"checkboxSelections"`
	MultipleChoiceSelection string                 `json:"multipleChoiceSelection"`
}

// RespondentContext identifies the submitting party: authenticated user id if
// present, else email and/or source IP.
type RespondentContext struct {
	UserID *uint
	Email  string
	IP     string
}

type SubmissionResult struct {
	Response         *models.Response
	AnswersProcessed int
}

// SubmitResponse runs the pipeline described in the package doc: load form,
// duplicate guard, create the response row, then process answers one by one.
// A malformed answer is logged and skipped; the response row stays committed
// regardless, so partial success is a first-class outcome.
func (s *SubmissionService) SubmitResponse(ctx context.Context, formID uint, rc RespondentContext, answers []AnswerInput, files []storage.SavedFile) (*SubmissionResult, error) {
	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		return nil, ErrNotFound
	}

	// Duplicate guard. The IP check runs even when require_email is set:
	// anonymous respondents may have no email at all.
	if !form.AllowMultipleResponses {
		if form.RequireEmail {
			if rc.Email == "" {
				return nil, ErrEmailRequired
			}
			var existing models.Response
			if err := s.db.Where("form_id = ? AND respondent_email = ?", formID, rc.Email).
				First(&existing).Error; err == nil {
				return nil, ErrDuplicateSubmission
			}
		}

		if rc.IP != "" {
			var existing models.Response
			if err := s.db.Where("form_id = ? AND ip_address = ?", formID, rc.IP).
				First(&existing).Error; err == nil {
				return nil, ErrDuplicateSubmission
			}
		}
	}

	response := models.Response{
		FormID:          formID,
		UserID:          rc.UserID,
		RespondentEmail: rc.Email,
		IPAddress:       rc.IP,
		SubmittedAt:     time.Now(),
	}
	if err := s.db.Create(&response).Error; err != nil {
		return nil, err
	}

	driveFolder := ""
	if s.drive != nil && len(files) > 0 {
		folderID, err := s.drive.EnsureFormFolder(ctx, formID)
		if err != nil {
			log.Printf("drive folder for form %d unavailable, skipping mirror: %v", formID, err)
		} else {
			driveFolder = folderID
		}
	}

	processed := 0
	for _, a := range answers {
		if err := s.processAnswer(ctx, &response, a, files, driveFolder); err != nil {
			log.Printf("skipping answer for question %d: %v", a.FieldUID, err)
			continue
		}
		processed++
	}

	return &SubmissionResult{Response: &response, AnswersProcessed: processed}, nil
}

func (s *SubmissionService) processAnswer(ctx context.Context, response *models.Response, a AnswerInput, files []storage.SavedFile, driveFolder string) error {
	var question models.Question
	if err := s.db.First(&question, a.FieldUID).Error; err != nil {
		return fmt.Errorf("question not found")
	}

	answer := models.Answer{
		ResponseID: response.ID,
		QuestionID: question.ID,
	}

	switch question.QuestionType {
	case models.QuestionTypeImageUpload, models.QuestionTypeImage:
		matched := filesForQuestion(files, "image_", question.ID)
		if len(matched) > 0 {
			urls := make([]string, 0, len(matched))
			paths := make([]string, 0, len(matched))
			for _, f := range matched {
				urls = append(urls, f.URL)
				paths = append(paths, f.Path)
			}
			answer.ImageURLs = strPtr(codec.EncodeStrings(urls))
			answer.ImagePaths = strPtr(codec.EncodeStrings(paths))
			s.mirror(ctx, driveFolder, matched)
		}
		answer.ImageResponses = strPtr(codec.EncodeImageSelections(a.CheckboxSelections))
		if a.MultipleChoiceSelection != "" {
			answer.SelectedChoices = strPtr(codec.EncodeText(a.MultipleChoiceSelection))
		}

	case models.QuestionTypeFileUpload:
		matched := filesForQuestion(files, "file_", question.ID)
		if len(matched) > 0 {
			urls := make([]string, 0, len(matched))
			paths := make([]string, 0, len(matched))
			for _, f := range matched {
				urls = append(urls, f.URL)
				paths = append(paths, f.Path)
			}
			answer.FilePaths = strPtr(codec.EncodeStrings(paths))
			answer.AnswerText = codec.EncodeStrings(urls)
			s.mirror(ctx, driveFolder, matched)
		}

	default:
		if list, ok := textAsList(a.Text); ok {
			// Checkbox-style answers arrive as arrays.
			answer.SelectedOptions = strPtr(codec.EncodeStrings(list))
		} else {
			answer.AnswerText = textAsString(a.Text)
		}
	}

	return s.db.Create(&answer).Error
}

// mirror uploads the matched files to the form's drive folder. One failed
// upload does not stop the others.
func (s *SubmissionService) mirror(ctx context.Context, driveFolder string, files []storage.SavedFile) {
	if s.drive == nil || driveFolder == "" {
		return
	}
	for _, f := range files {
		src, err := s.store.Open(f.Name)
		if err != nil {
			log.Printf("drive mirror: cannot open %s: %v", f.Name, err)
			continue
		}
		fileID, err := s.drive.Upload(ctx, driveFolder, f.Name, src)
		src.Close()
		if err != nil {
			log.Printf("drive mirror: upload %s failed: %v", f.Name, err)
			continue
		}
		if _, err := s.drive.ShareableLink(ctx, fileID); err != nil {
			log.Printf("drive mirror: sharing %s failed: %v", f.Name, err)
		}
	}
}

// filesForQuestion picks the uploaded files whose field tag matches this
// question, e.g. image_12_0, file_12_1.
func filesForQuestion(files []storage.SavedFile, kind string, questionID uint) []storage.SavedFile {
	prefix := fmt.Sprintf("%s%d_", kind, questionID)
	var matched []storage.SavedFile
	for _, f := range files {
		if strings.HasPrefix(f.Field, prefix) {
			matched = append(matched, f)
		}
	}
	return matched
}

func textAsList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	return nil, false
}

func textAsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func strPtr(s string) *string { return &s }
