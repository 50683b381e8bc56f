package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/forms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/forms", "garbage-token", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateFormRequiresAdmin(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "Regular", "user@example.com", "")

	w := doJSON(t, r, http.MethodPost, "/api/forms", token, gin.H{"title": "Survey"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetFormHiddenFromStrangers(t *testing.T) {
	r := newTestRouter(t)
	admin := registerUser(t, r, "Admin", "admin@example.com", "admin")
	stranger := registerUser(t, r, "Stranger", "stranger@example.com", "")

	w := doJSON(t, r, http.MethodPost, "/api/forms", admin, gin.H{"title": "Survey"})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Form struct {
			ID uint `json:"id"`
		} `json:"form"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodGet, formPath(created.Form.ID, ""), stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// unknown id
	w = doJSON(t, r, http.MethodGet, "/api/forms/9999", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestFormLifecycle walks the whole flow: an admin designs a form, an
// anonymous respondent fetches the public view and submits a multipart
// response with an attached file, and the owner reads it back as JSON and CSV.
func TestFormLifecycle(t *testing.T) {
	r := newTestRouter(t)
	admin := registerUser(t, r, "Admin", "admin@example.com", "admin")

	w := doJSON(t, r, http.MethodPost, "/api/forms", admin, gin.H{
		"title":       "Job Application",
		"description": "Apply here",
		"fields": []gin.H{
			{"label": "Your name", "type": "short_answer", "placeholder": "Full name"},
			{"label": "Attach CV", "type": "file_upload"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		Form struct {
			ID     uint `json:"id"`
			Fields []struct {
				ID    uint   `json:"id"`
				Label string `json:"label"`
				Type  string `json:"type"`
			} `json:"fields"`
		} `json:"form"`
	}
	decodeBody(t, w, &created)
	require.Len(t, created.Form.Fields, 2)

	// public view is open and keyed by uid, with no owner metadata
	w = doJSON(t, r, http.MethodGet, formPath(created.Form.ID, "/public"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var public struct {
		Title  string `json:"title"`
		Fields []struct {
			UID  uint   `json:"uid"`
			Type string `json:"type"`
		} `json:"fields"`
	}
	decodeBody(t, w, &public)
	assert.Equal(t, "Job Application", public.Title)
	require.Len(t, public.Fields, 2)
	assert.NotContains(t, w.Body.String(), "created_by")

	nameUID := public.Fields[0].UID
	fileUID := public.Fields[1].UID

	// anonymous multipart submission with one text answer and one file
	answers, err := json.Marshal([]gin.H{
		{"fieldUid": nameUID, "type": "short_answer", "text": "Jane Doe"},
		{"fieldUid": fileUID, "type": "file_upload"},
	})
	require.NoError(t, err)

	w = doMultipart(t, r, formPath(created.Form.ID, "/responses"), "", string(answers),
		map[string]string{fileFieldName("file_", fileUID): "cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var submitted struct {
		AnswersProcessed int `json:"answersProcessed"`
		Response         struct {
			ID     uint `json:"id"`
			FormID uint `json:"formId"`
		} `json:"response"`
	}
	decodeBody(t, w, &submitted)
	assert.Equal(t, 2, submitted.AnswersProcessed)
	assert.Equal(t, created.Form.ID, submitted.Response.FormID)

	// owner reads the responses back
	w = doJSON(t, r, http.MethodGet, formPath(created.Form.ID, "/responses"), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var responses []struct {
		Respondent struct {
			Name string `json:"name"`
		} `json:"respondent"`
		Answers []struct {
			Question string `json:"question"`
		} `json:"answers"`
	}
	decodeBody(t, w, &responses)
	require.Len(t, responses, 1)
	assert.Equal(t, "Anonymous", responses[0].Respondent.Name)
	assert.Len(t, responses[0].Answers, 2)

	// and exports them as CSV
	w = doJSON(t, r, http.MethodGet, formPath(created.Form.ID, "/csv"), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "form_responses_")
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.Contains(t, w.Body.String(), "/uploads/")
}

func TestSubmitResponseBadPayloads(t *testing.T) {
	r := newTestRouter(t)
	admin := registerUser(t, r, "Admin", "admin@example.com", "admin")

	w := doJSON(t, r, http.MethodPost, "/api/forms", admin, gin.H{"title": "Survey"})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Form struct {
			ID uint `json:"id"`
		} `json:"form"`
	}
	decodeBody(t, w, &created)

	w = doMultipart(t, r, formPath(created.Form.ID, "/responses"), "", "not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doMultipart(t, r, "/api/forms/9999/responses", "", "[]", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeleteForm(t *testing.T) {
	r := newTestRouter(t)
	admin := registerUser(t, r, "Admin", "admin@example.com", "admin")

	w := doJSON(t, r, http.MethodPost, "/api/forms", admin, gin.H{
		"title":  "Survey",
		"fields": []gin.H{{"label": "Q1", "type": "short_answer"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Form struct {
			ID uint `json:"id"`
		} `json:"form"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodPut, formPath(created.Form.ID, ""), admin, gin.H{
		"title": "Renamed",
		"fields": []gin.H{
			{"label": "Q1", "type": "short_answer"},
			{"label": "Q2", "type": "checkboxes", "options": []string{"A", "B"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Form struct {
			Title  string `json:"title"`
			Fields []struct {
				Label string `json:"label"`
			} `json:"fields"`
		} `json:"form"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, "Renamed", updated.Form.Title)
	assert.Len(t, updated.Form.Fields, 2)

	w = doJSON(t, r, http.MethodDelete, formPath(created.Form.ID, ""), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, formPath(created.Form.ID, ""), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func formPath(id uint, suffix string) string {
	return "/api/forms/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func fileFieldName(kind string, uid uint) string {
	return kind + strconv.FormatUint(uint64(uid), 10) + "_0"
}

// doMultipart posts a multipart submission: the answers JSON plus dummy file
// parts named after the given field tags.
func doMultipart(t *testing.T, r *gin.Engine, path, token, answers string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("answers", answers))
	for field, filename := range files {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("file content"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
