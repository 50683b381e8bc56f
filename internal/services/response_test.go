package services

import (
	"context"
	"strings"
	"testing"

	"form-builder-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestListResponsesAuthorization(t *testing.T) {
	db := newTestDB(t)
	form, owner := createSubmissionForm(t, db, true, false)
	stranger := createTestUser(t, db, "stranger@example.com", models.RoleUser)
	svc := NewResponseService(db)

	_, err := svc.ListResponses(form.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListResponses(form.ID, owner.ID, false)
	assert.NoError(t, err)

	_, err = svc.ListResponses(9999, owner.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListResponsesDecodesAnswers(t *testing.T) {
	db := newTestDB(t)
	sub := newSubmissionService(t, db)
	form, owner := createSubmissionForm(t, db, true, false)
	respondent := createTestUser(t, db, "respondent@example.com", models.RoleUser)

	answers := []AnswerInput{
		{FieldUID: form.Fields[0].ID, Text: rawText("Jane")},
		{FieldUID: form.Fields[1].ID, Text: rawText([]string{"Red", "Green"})},
	}
	_, err := sub.SubmitResponse(context.Background(), form.ID,
		RespondentContext{UserID: &respondent.ID, IP: "1.2.3.4"}, answers, nil)
	assert.NoError(t, err)

	// An anonymous submission alongside it.
	_, err = sub.SubmitResponse(context.Background(), form.ID,
		RespondentContext{Email: "anon@example.com", IP: "5.6.7.8"},
		[]AnswerInput{{FieldUID: form.Fields[0].ID, Text: rawText("Anon Answer")}}, nil)
	assert.NoError(t, err)

	payloads, err := NewResponseService(db).ListResponses(form.ID, owner.ID, false)
	assert.NoError(t, err)
	assert.Len(t, payloads, 2)

	byName := map[string]ResponsePayload{}
	for _, p := range payloads {
		byName[p.Respondent.Name] = p
	}

	known := byName["Test User"]
	assert.Equal(t, "respondent@example.com", known.Respondent.Email)
	assert.Len(t, known.Answers, 2)
	for _, a := range known.Answers {
		switch a.Question {
		case "Name":
			assert.NotNil(t, a.AnswerText)
			assert.Equal(t, "Jane", *a.AnswerText)
		case "Colours":
			assert.Equal(t, []string{"Red", "Green"}, a.CheckboxSelections)
		}
	}

	anon := byName["Anonymous"]
	assert.Equal(t, "anon@example.com", anon.Respondent.Email)
}

func TestListResponsesSkipsDanglingAnswers(t *testing.T) {
	db := newTestDB(t)
	sub := newSubmissionService(t, db)
	form, owner := createSubmissionForm(t, db, true, false)
	formSvc := NewFormService(db)

	_, err := sub.SubmitResponse(context.Background(), form.ID,
		RespondentContext{IP: "1.2.3.4"},
		[]AnswerInput{{FieldUID: form.Fields[0].ID, Text: rawText("orphan soon")}}, nil)
	assert.NoError(t, err)

	// Rewriting the question set orphans the stored answer. The row itself
	// survives: there is no FK tying answers to questions.
	_, err = formSvc.UpdateForm(form.ID, owner.ID, false, "", "", []FieldInput{
		{Label: "brand new", Type: models.QuestionTypeShortAnswer},
	})
	assert.NoError(t, err)

	var orphans int64
	db.Model(&models.Answer{}).Where("question_id = ?", form.Fields[0].ID).Count(&orphans)
	assert.EqualValues(t, 1, orphans)

	payloads, err := NewResponseService(db).ListResponses(form.ID, owner.ID, false)
	assert.NoError(t, err)
	assert.Len(t, payloads, 1)
	assert.Len(t, payloads[0].Answers, 0)
}

func TestDeleteResponseRemovesOnlyItsAnswers(t *testing.T) {
	db := newTestDB(t)
	form, _ := createSubmissionForm(t, db, true, false)

	doomed := models.Response{FormID: form.ID}
	assert.NoError(t, db.Create(&doomed).Error)
	assert.NoError(t, db.Create(&models.Answer{
		ResponseID: doomed.ID,
		QuestionID: form.Fields[0].ID,
		AnswerText: "bye",
	}).Error)

	sibling := models.Response{FormID: form.ID}
	assert.NoError(t, db.Create(&sibling).Error)
	assert.NoError(t, db.Create(&models.Answer{
		ResponseID: sibling.ID,
		QuestionID: form.Fields[0].ID,
		AnswerText: "stay",
	}).Error)

	// The response→answer FK cascade does the cleanup; there is no
	// application-side delete path for single responses.
	assert.NoError(t, db.Delete(&models.Response{}, doomed.ID).Error)

	var doomedAnswers, siblingAnswers, forms int64
	db.Model(&models.Answer{}).Where("response_id = ?", doomed.ID).Count(&doomedAnswers)
	db.Model(&models.Answer{}).Where("response_id = ?", sibling.ID).Count(&siblingAnswers)
	db.Model(&models.Form{}).Where("id = ?", form.ID).Count(&forms)
	assert.Zero(t, doomedAnswers)
	assert.EqualValues(t, 1, siblingAnswers)
	assert.EqualValues(t, 1, forms)
}

func TestExportCSVShape(t *testing.T) {
	db := newTestDB(t)
	sub := newSubmissionService(t, db)
	form, owner := createSubmissionForm(t, db, true, false)

	// First respondent answers only the name question, with a quote to
	// exercise escaping.
	_, err := sub.SubmitResponse(context.Background(), form.ID,
		RespondentContext{Email: "one@example.com", IP: "1.1.1.1"},
		[]AnswerInput{{FieldUID: form.Fields[0].ID, Text: rawText(`Jane "JJ" Doe`)}}, nil)
	assert.NoError(t, err)

	// Second respondent answers checkboxes only.
	_, err = sub.SubmitResponse(context.Background(), form.ID,
		RespondentContext{Email: "two@example.com", IP: "2.2.2.2"},
		[]AnswerInput{{FieldUID: form.Fields[1].ID, Text: rawText([]string{"Red", "Green"})}}, nil)
	assert.NoError(t, err)

	content, err := NewResponseService(db).ExportCSV(form.ID, owner.ID, false)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	assert.Len(t, lines, 3) // header + one row per response

	header := lines[0]
	assert.Equal(t, 4+len(form.Fields), len(strings.Split(header, `","`)))
	assert.True(t, strings.HasPrefix(header, `"Submission ID","Submitted At","Respondent Name","Respondent Email"`))

	assert.Contains(t, content, `"Jane ""JJ"" Doe"`)
	assert.Contains(t, content, `"Red, Green"`)
	assert.Contains(t, content, `"No response"`)
	assert.Contains(t, content, `"Anonymous"`)

	// Every cell quoted.
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, `"`))
		assert.True(t, strings.HasSuffix(line, `"`))
	}
}

func TestExportCSVPrefersURLListOverText(t *testing.T) {
	db := newTestDB(t)
	form, owner := createSubmissionForm(t, db, true, false)

	resp := models.Response{FormID: form.ID}
	assert.NoError(t, db.Create(&resp).Error)

	urls := `["/uploads/a.png","/uploads/b.png"]`
	assert.NoError(t, db.Create(&models.Answer{
		ResponseID: resp.ID,
		QuestionID: form.Fields[3].ID,
		AnswerText: "plain text that should lose",
		ImageURLs:  &urls,
	}).Error)

	content, err := NewResponseService(db).ExportCSV(form.ID, owner.ID, false)
	assert.NoError(t, err)
	assert.Contains(t, content, `"/uploads/a.png, /uploads/b.png"`)
	assert.NotContains(t, content, "plain text that should lose")
}
